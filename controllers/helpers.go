package controllers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/campus-services-go/apperrors"
	"github.com/phillip/campus-services-go/middleware"
	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/utils"
)

const maxUploadFiles = 9

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, apperrors.ErrInvalidState):
		return http.StatusConflict, "operation not allowed in the current state"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "modified concurrently, reload and retry"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, utils.ErrUploadsDisabled):
		return http.StatusServiceUnavailable, "image uploads are not configured"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// respondError writes the mapped error and logs it; 5xx at error level, the rest as warnings.
func respondError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, err, message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// actorFrom builds the caller from the values AuthMiddleware left on the context.
func actorFrom(c *gin.Context) (models.Actor, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString(middleware.CtxUserID))
	if err != nil {
		utils.JSONError(c, http.StatusUnauthorized,
			fmt.Errorf("invalid user id: %w", apperrors.ErrUnauthorized), "invalid user id")
		return models.Actor{}, false
	}
	return models.Actor{UserID: userID, Role: c.GetString(middleware.CtxRole)}, true
}

// itemIDParam parses :id. A malformed id cannot name an item, so it answers 404.
func itemIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	raw := c.Param("id")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, fmt.Errorf("item %q: %w", raw, apperrors.ErrNotFound), "item not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// uploadFiles stores every file under field and returns their URLs in form order.
// Files already stored are removed again when a later one fails.
func uploadFiles(ctx context.Context, images utils.ImageStore, form *multipart.Form, field, folder string) ([]string, error) {
	if form == nil || len(form.File[field]) == 0 {
		return nil, nil
	}
	files := form.File[field]
	if len(files) > maxUploadFiles {
		return nil, apperrors.Invalid(field, "max")
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			discardUploads(ctx, images, urls)
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		url, err := images.Upload(ctx, file, folder)
		file.Close()
		if err != nil {
			discardUploads(ctx, images, urls)
			return nil, fmt.Errorf("upload %s: %w", fh.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func discardUploads(ctx context.Context, images utils.ImageStore, urls []string) {
	for _, u := range urls {
		if err := images.Delete(ctx, u); err != nil {
			utils.Warn("could not remove orphaned upload", map[string]any{"url": u, "error": err.Error()})
		}
	}
}

// itemETag covers the fields a client copy can go stale on without an UpdatedAt bump.
func itemETag(item *models.Item) string {
	return utils.GenerateETag(item.ID, item.UpdatedAt, string(item.Status), fmt.Sprint(item.Revision))
}

// writeItem sends item with validators, or 304 when the client copy is current.
func writeItem(c *gin.Context, item *models.Item, message string) {
	etag := itemETag(item)
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Header("ETag", etag)
	c.Header("Last-Modified", item.UpdatedAt.UTC().Format(http.TimeFormat))
	c.Header("Cache-Control", "private")
	c.Header("Vary", "Authorization")
	utils.JSONResponse(c, http.StatusOK, item, message)
}
