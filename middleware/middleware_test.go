package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/phillip/campus-services-go/metrics"
	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/notify"
	"github.com/phillip/campus-services-go/utils"
)

const testSecret = "test-secret"

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetString(CtxUserID),
			"role":       c.GetString(CtxRole),
			"request_id": notify.RequestIDFrom(c.Request.Context()),
		})
	})...)
	return r
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(testSecret, userID, role)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	router := newRouter(AuthMiddleware(testSecret))
	otherSecret, err := utils.GenerateToken("another-secret", "u1", models.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantRole   string
	}{
		{name: "missing_header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "not_bearer", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "garbage_token", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized},
		{name: "wrong_secret", header: "Bearer " + otherSecret, wantStatus: http.StatusUnauthorized},
		{name: "moderator", header: "Bearer " + token(t, "u1", models.RoleModerator), wantStatus: http.StatusOK, wantRole: models.RoleModerator},
		{name: "role_defaults_to_user", header: "bearer " + token(t, "u1", ""), wantStatus: http.StatusOK, wantRole: models.RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantStatus != http.StatusOK {
				require.Equal(t, "unauthorized", body["kind"])
				return
			}
			require.Equal(t, "u1", body["user_id"])
			require.Equal(t, tt.wantRole, body["role"])
		})
	}
}

func TestRequireRole(t *testing.T) {
	router := newRouter(AuthMiddleware(testSecret), RequireRole(models.RoleModerator))

	tests := []struct {
		role       string
		wantStatus int
	}{
		{role: models.RoleUser, wantStatus: http.StatusForbidden},
		{role: models.RoleModerator, wantStatus: http.StatusOK},
		{role: models.RoleAdmin, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Authorization", "Bearer "+token(t, "u1", tt.role))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	router := newRouter(RequestID(), RequestLogger())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	generated := w.Header().Get(HeaderRequestID)
	require.NotEmpty(t, generated)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, generated, body["request_id"])

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
}

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	if out.Counter != nil {
		return out.Counter.GetValue()
	}
	return out.Gauge.GetValue()
}

func TestMetrics(t *testing.T) {
	router := newRouter(Metrics())
	counter := metrics.RequestsTotal.WithLabelValues("/ping", http.MethodGet, "200")
	before := value(t, counter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, before+1, value(t, counter))
	require.Zero(t, value(t, metrics.InFlight))
}

func TestCORS(t *testing.T) {
	router := newRouter(CORS([]string{"https://admin.campus.test"}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://admin.campus.test")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, "https://admin.campus.test", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}
