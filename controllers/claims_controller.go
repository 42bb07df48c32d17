package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/utils"
)

// SubmitClaim takes a JSON ClaimDraft, or a multipart form with a "description" field
// and "proof_images" files.
func SubmitClaim(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		itemID, ok := itemIDParam(c)
		if !ok {
			return
		}

		var draft models.ClaimDraft
		var uploaded []string
		if isMultipart(c) {
			var input struct {
				Description string `form:"description"`
			}
			if err := c.ShouldBind(&input); err != nil {
				HandleBindError(c, "SubmitClaim", err)
				return
			}
			form, err := c.MultipartForm()
			if err != nil {
				HandleBindError(c, "SubmitClaim", err)
				return
			}
			uploaded, err = uploadFiles(c.Request.Context(), d.Images, form, "proof_images", utils.FolderProofImages)
			if err != nil {
				respondError(c, "SubmitClaim", err, map[string]any{"item_id": itemID.Hex()})
				return
			}
			draft = models.ClaimDraft{Description: input.Description, ProofImages: uploaded, Uploads: uploaded}
		} else if err := c.ShouldBindJSON(&draft); err != nil {
			HandleBindError(c, "SubmitClaim", err)
			return
		}

		claimant, err := d.Items.SubmitClaim(c.Request.Context(), actor, itemID, draft)
		if err != nil {
			discardUploads(c.Request.Context(), d.Images, uploaded)
			respondError(c, "SubmitClaim", err, map[string]any{"item_id": itemID.Hex(), "user_id": actor.UserID.Hex()})
			return
		}

		utils.JSONResponse(c, http.StatusCreated, claimant, "claim submitted successfully")
		LogSuccess("SubmitClaim", "claim submitted", map[string]any{
			"item_id":     itemID.Hex(),
			"claimant_id": claimant.ID,
		})
	}
}
