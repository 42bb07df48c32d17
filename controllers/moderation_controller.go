package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/utils"
)

// AdminGetItem reads an item for review without counting a view.
func AdminGetItem(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := itemIDParam(c)
		if !ok {
			return
		}
		item, err := d.Items.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, "AdminGetItem", err, map[string]any{"item_id": id.Hex()})
			return
		}
		writeItem(c, item, "item retrieved successfully")
	}
}

type reviewFunc func(ctx context.Context, actor models.Actor, itemID primitive.ObjectID, claimantID string) (*models.Item, error)

func ApproveClaim(d *Deps) gin.HandlerFunc {
	return reviewClaim("ApproveClaim", d.Moderation.ApproveClaim, "claim approved")
}

func RejectClaim(d *Deps) gin.HandlerFunc {
	return reviewClaim("RejectClaim", d.Moderation.RejectClaim, "claim rejected")
}

func reviewClaim(handlerName string, review reviewFunc, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		itemID, ok := itemIDParam(c)
		if !ok {
			return
		}
		claimID := c.Param("claimId")

		item, err := review(c.Request.Context(), actor, itemID, claimID)
		if err != nil {
			respondError(c, handlerName, err, map[string]any{"item_id": itemID.Hex(), "claimant_id": claimID})
			return
		}

		utils.JSONResponse(c, http.StatusOK, item, message)
		LogSuccess(handlerName, message, map[string]any{
			"item_id":      itemID.Hex(),
			"claimant_id":  claimID,
			"moderator_id": actor.UserID.Hex(),
		})
	}
}

func ResolveItem(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		itemID, ok := itemIDParam(c)
		if !ok {
			return
		}

		item, err := d.Moderation.MarkResolved(c.Request.Context(), actor, itemID)
		if err != nil {
			respondError(c, "ResolveItem", err, map[string]any{"item_id": itemID.Hex()})
			return
		}

		utils.JSONResponse(c, http.StatusOK, item, "item resolved")
		LogSuccess("ResolveItem", "item resolved", map[string]any{"item_id": itemID.Hex(), "moderator_id": actor.UserID.Hex()})
	}
}

// DeleteItem answers 200 with deleted=false when the item was already gone.
func DeleteItem(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		itemID, ok := itemIDParam(c)
		if !ok {
			return
		}

		deleted, err := d.Moderation.DeleteItem(c.Request.Context(), actor, itemID)
		if err != nil {
			respondError(c, "DeleteItem", err, map[string]any{"item_id": itemID.Hex()})
			return
		}

		message := "item deleted successfully"
		if !deleted {
			message = "item already deleted"
		}
		utils.JSONResponse(c, http.StatusOK, gin.H{"deleted": deleted}, message)
		LogSuccess("DeleteItem", message, map[string]any{"item_id": itemID.Hex(), "moderator_id": actor.UserID.Hex()})
	}
}

// SweepItems runs the expiry sweep once.
func SweepItems(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := d.Moderation.SweepExpired(c.Request.Context())
		if err != nil {
			respondError(c, "SweepItems", err, nil)
			return
		}
		utils.JSONResponse(c, http.StatusOK, gin.H{"expired": n}, "expiry sweep finished")
	}
}
