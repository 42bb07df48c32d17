package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/utils"
)

// ListPublicConfigs is served without authentication.
func ListPublicConfigs(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfgs, err := d.Configs.ListPublic(c.Request.Context())
		if err != nil {
			respondError(c, "ListPublicConfigs", err, nil)
			return
		}
		if cfgs == nil {
			cfgs = []models.SystemConfig{}
		}
		utils.JSONResponse(c, http.StatusOK, cfgs, "configs retrieved successfully")
	}
}

func ListConfigs(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		cfgs, err := d.Configs.List(c.Request.Context(), actor, models.ConfigCategory(c.Query("category")))
		if err != nil {
			respondError(c, "ListConfigs", err, nil)
			return
		}
		if cfgs == nil {
			cfgs = []models.SystemConfig{}
		}
		utils.JSONResponse(c, http.StatusOK, cfgs, "configs retrieved successfully")
	}
}

func GetConfig(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		key := c.Param("key")
		cfg, err := d.Configs.Get(c.Request.Context(), actor, key)
		if err != nil {
			respondError(c, "GetConfig", err, map[string]any{"key": key})
			return
		}
		utils.JSONResponse(c, http.StatusOK, cfg, "config retrieved successfully")
	}
}

// PutConfig upserts the key named in the path; a key in the body is ignored.
func PutConfig(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		var draft models.ConfigDraft
		if err := c.ShouldBindJSON(&draft); err != nil {
			HandleBindError(c, "PutConfig", err)
			return
		}
		draft.Key = c.Param("key")

		cfg, err := d.Configs.Upsert(c.Request.Context(), actor, draft)
		if err != nil {
			respondError(c, "PutConfig", err, map[string]any{"key": draft.Key})
			return
		}

		utils.JSONResponse(c, http.StatusOK, cfg, "config saved successfully")
		LogSuccess("PutConfig", "config saved", map[string]any{"key": cfg.Key, "admin_id": actor.UserID.Hex()})
	}
}

func DeleteConfig(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		key := c.Param("key")

		deleted, err := d.Configs.Delete(c.Request.Context(), actor, key)
		if err != nil {
			respondError(c, "DeleteConfig", err, map[string]any{"key": key})
			return
		}

		message := "config deleted successfully"
		if !deleted {
			message = "config already deleted"
		}
		utils.JSONResponse(c, http.StatusOK, gin.H{"deleted": deleted}, message)
	}
}
