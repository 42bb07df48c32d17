package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/campus-services-go/config"
	"github.com/phillip/campus-services-go/controllers"
	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/repository"
	"github.com/phillip/campus-services-go/services/lostfound"
	"github.com/phillip/campus-services-go/services/sysconfig"
	"github.com/phillip/campus-services-go/utils"
)

const secret = "routes-test-secret"

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func setup(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	configs := sysconfig.NewService(repo)
	items := lostfound.NewService(repo, lostfound.WithAutoRejectSiblings(false, configs))

	r := gin.New()
	SetupRoutes(r, &config.Config{JWTSecret: secret, CORSOrigins: []string{"*"}}, &controllers.Deps{
		Items:      items,
		Moderation: items,
		Configs:    configs,
		Images:     utils.NoopImageStore{},
		Store:      repo,
	})
	return &apiClient{t: t, router: r}
}

func (a *apiClient) token(role string) (string, primitive.ObjectID) {
	id := primitive.NewObjectID()
	tok, err := utils.GenerateToken(secret, id.Hex(), role)
	require.NoError(a.t, err)
	return tok, id
}

func (a *apiClient) call(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func data(body map[string]any) map[string]any {
	return body["data"].(map[string]any)
}

func TestHealthAndMetrics(t *testing.T) {
	api := setup(t)

	status, body := api.call(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestClaimLifecycle(t *testing.T) {
	api := setup(t)
	poster, _ := api.token(models.RoleUser)
	alice, _ := api.token(models.RoleUser)
	bob, _ := api.token(models.RoleUser)
	mod, _ := api.token(models.RoleModerator)

	status, _ := api.call(http.MethodPost, "/items", "", map[string]any{})
	require.Equal(t, http.StatusUnauthorized, status)

	status, body := api.call(http.MethodPost, "/items", poster, map[string]any{
		"title":       "Black umbrella",
		"description": "Found by the cafeteria entrance",
		"type":        "found",
		"category":    "others",
		"location":    map[string]any{"place": "Cafeteria", "storage": "Front desk"},
		"contact":     map[string]any{"name": "Desk", "phone": "5550100"},
	})
	require.Equal(t, http.StatusCreated, status, body)
	itemID := data(body)["id"].(string)

	status, body = api.call(http.MethodPost, "/items/"+itemID+"/claims", alice, map[string]any{"description": "Mine, wooden handle"})
	require.Equal(t, http.StatusCreated, status, body)
	aliceClaim := data(body)["id"].(string)

	status, _ = api.call(http.MethodPost, "/items/"+itemID+"/claims", bob, map[string]any{"description": "I lost one too"})
	require.Equal(t, http.StatusCreated, status)

	status, _ = api.call(http.MethodPost, "/admin/items/"+itemID+"/claims/"+aliceClaim+"/approve", alice, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, body = api.call(http.MethodPost, "/admin/items/"+itemID+"/claims/"+aliceClaim+"/approve", mod, nil)
	require.Equal(t, http.StatusOK, status, body)
	stats := data(body)["stats"].(map[string]any)
	require.Equal(t, 2.0, stats["claims"])

	status, body = api.call(http.MethodPost, "/admin/items/"+itemID+"/claims/"+aliceClaim+"/reject", mod, nil)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "invalid_state", body["kind"])

	status, body = api.call(http.MethodPost, "/admin/items/"+itemID+"/resolve", mod, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "resolved", data(body)["status"])

	status, body = api.call(http.MethodPost, "/items/"+itemID+"/claims", bob, map[string]any{"description": "again"})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "invalid_state", body["kind"])

	status, body = api.call(http.MethodGet, "/items/"+itemID, alice, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1.0, data(body)["stats"].(map[string]any)["views"])
	visible := data(body)["claimants"].([]any)
	require.Len(t, visible, 1)
	require.Equal(t, aliceClaim, visible[0].(map[string]any)["id"])

	stranger, _ := api.token(models.RoleUser)
	status, body = api.call(http.MethodGet, "/items/"+itemID, stranger, nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, data(body)["claimants"])
	require.Equal(t, 2.0, data(body)["stats"].(map[string]any)["claims"])

	status, body = api.call(http.MethodGet, "/items/"+itemID, poster, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, data(body)["claimants"], 2)

	status, body = api.call(http.MethodGet, "/items?type=found&status=resolved", alice, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1.0, data(body)["total"])

	status, body = api.call(http.MethodGet, "/items?page=922337203685477581&limit=20", alice, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation", body["kind"])

	status, body = api.call(http.MethodDelete, "/admin/items/"+itemID, mod, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, data(body)["deleted"])

	status, _ = api.call(http.MethodGet, "/items/"+itemID, alice, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestConfigRoutes(t *testing.T) {
	api := setup(t)
	admin, _ := api.token(models.RoleAdmin)
	mod, _ := api.token(models.RoleModerator)

	status, _ := api.call(http.MethodPut, "/admin/configs/site.name", mod, map[string]any{"type": "string", "value": "x"})
	require.Equal(t, http.StatusForbidden, status)

	status, body := api.call(http.MethodPut, "/admin/configs/site.name", admin, map[string]any{
		"type": "string", "value": "Campus Lost & Found", "isPublic": true,
	})
	require.Equal(t, http.StatusOK, status, body)

	status, body = api.call(http.MethodPut, "/admin/configs/uploads.max", admin, map[string]any{
		"type": "number", "value": "nine",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation", body["kind"])

	status, body = api.call(http.MethodGet, "/configs/public", "", nil)
	require.Equal(t, http.StatusOK, status)
	public := body["data"].([]any)
	require.Len(t, public, 1)
	require.Equal(t, "Campus Lost & Found", public[0].(map[string]any)["value"])
}
