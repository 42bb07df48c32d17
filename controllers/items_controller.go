package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/campus-services-go/apperrors"
	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/utils"
)

// ---------------- CREATE ----------------

// CreateItem accepts a JSON draft, or a multipart form whose "data" field holds the draft
// and whose "images" files are uploaded and appended to draft.images.
func CreateItem(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		var draft models.ItemDraft
		var uploaded []string
		if isMultipart(c) {
			form, err := c.MultipartForm()
			if err != nil {
				HandleBindError(c, "CreateItem", err)
				return
			}
			if data := form.Value["data"]; len(data) > 0 {
				if err := json.Unmarshal([]byte(data[0]), &draft); err != nil {
					HandleBindError(c, "CreateItem", err)
					return
				}
			}
			uploaded, err = uploadFiles(c.Request.Context(), d.Images, form, "images", utils.FolderItemImages)
			if err != nil {
				respondError(c, "CreateItem", err, nil)
				return
			}
			draft.Images = append(draft.Images, uploaded...)
			draft.Uploads = uploaded
		} else if err := c.ShouldBindJSON(&draft); err != nil {
			HandleBindError(c, "CreateItem", err)
			return
		}

		item, err := d.Items.Create(c.Request.Context(), actor, draft)
		if err != nil {
			discardUploads(c.Request.Context(), d.Images, uploaded)
			respondError(c, "CreateItem", err, map[string]any{"user_id": actor.UserID.Hex()})
			return
		}

		utils.JSONResponse(c, http.StatusCreated, item, "item created successfully")
		LogSuccess("CreateItem", "item created", map[string]any{
			"item_id": item.ID.Hex(),
			"type":    item.Type,
			"images":  len(item.Images),
		})
	}
}

// ---------------- LIST ----------------
func ListItems(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		q, err := parseItemQuery(c)
		if err != nil {
			respondError(c, "ListItems", err, nil)
			return
		}

		page, err := d.Items.Find(c.Request.Context(), q)
		if err != nil {
			respondError(c, "ListItems", err, nil)
			return
		}
		if page.Items == nil {
			page.Items = []models.Item{}
		}
		for i := range page.Items {
			page.Items[i].RedactClaimants(actor)
		}
		utils.JSONResponse(c, http.StatusOK, page, "items retrieved successfully")
	}
}

func parseItemQuery(c *gin.Context) (models.ItemQuery, error) {
	q := models.ItemQuery{
		Type:     models.ItemType(c.Query("type")),
		Status:   models.ItemStatus(c.Query("status")),
		Category: models.Category(c.Query("category")),
		Text:     c.Query("q"),
		Sort:     models.SortOrder(c.Query("sort")),
	}

	ve := &apperrors.ValidationError{}
	if raw := c.Query("poster"); raw != "" {
		poster, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			ve.Fields = append(ve.Fields, apperrors.FieldError{Field: "poster", Rule: "objectid"})
		}
		q.Poster = poster
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &q.Page}, {"limit", &q.Limit}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			ve.Fields = append(ve.Fields, apperrors.FieldError{Field: p.name, Rule: "numeric"})
			continue
		}
		*p.dst = n
	}
	if len(ve.Fields) > 0 {
		return q, ve
	}
	return q, nil
}

// ---------------- GET ----------------

// GetItem counts a view and serves the item with ETag / Last-Modified validators.
// Claimants other than the caller are hidden unless the caller posted the item or moderates.
func GetItem(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		id, ok := itemIDParam(c)
		if !ok {
			return
		}

		item, err := d.Items.View(c.Request.Context(), id)
		if err != nil {
			respondError(c, "GetItem", err, map[string]any{"item_id": id.Hex()})
			return
		}
		item.RedactClaimants(actor)
		writeItem(c, item, "item retrieved successfully")
	}
}

// ---------------- UPDATE ----------------
func UpdateItem(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		id, ok := itemIDParam(c)
		if !ok {
			return
		}

		var patch models.ItemPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			HandleBindError(c, "UpdateItem", err)
			return
		}

		item, err := d.Items.Update(c.Request.Context(), actor, id, patch)
		if err != nil {
			respondError(c, "UpdateItem", err, map[string]any{"item_id": id.Hex(), "user_id": actor.UserID.Hex()})
			return
		}

		c.Header("ETag", itemETag(item))
		utils.JSONResponse(c, http.StatusOK, item, "item updated successfully")
		LogSuccess("UpdateItem", "item updated", map[string]any{
			"item_id":  item.ID.Hex(),
			"revision": item.Revision,
		})
	}
}
