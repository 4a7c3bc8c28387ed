package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emre/schoolhub/internal/app/controllers"
	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/middleware"
	"github.com/emre/schoolhub/internal/pkg/auth"
)

// setupTestRouter registers the full route table over empty controllers.
// Requests below stop in the auth middleware, so no handler body runs.
func setupTestRouter() (*gin.Engine, *auth.JWTService) {
	gin.SetMode(gin.TestMode)
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour})
	router := gin.New()
	SetupRouter(router, &controllers.Controllers{}, middleware.NewAuthMiddleware(jwtService))
	return router, jwtService
}

func request(router *gin.Engine, path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder.Code
}

func TestProtectedRoutesAreRegisteredAndGated(t *testing.T) {
	router, _ := setupTestRouter()

	// 401, not 404: the route exists and sits behind JWTAuth
	paths := []string{
		"/api/v1/auth/me",
		"/api/v1/results/export",
		"/api/v1/attendances/export",
	}
	for _, path := range paths {
		if code := request(router, path, ""); code != http.StatusUnauthorized {
			t.Errorf("GET %s without token = %d, want 401", path, code)
		}
	}
}

func TestExportRoutesRejectNonStaff(t *testing.T) {
	router, jwtService := setupTestRouter()

	token, _, err := jwtService.GenerateToken(5, "student", string(models.RoleStudent), 5)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	for _, path := range []string{"/api/v1/results/export", "/api/v1/attendances/export"} {
		if code := request(router, path, token); code != http.StatusForbidden {
			t.Errorf("GET %s as student = %d, want 403", path, code)
		}
	}
}
