package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/pkg/auth"
)

func testRouter(jwtService *auth.JWTService, roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	m := NewAuthMiddleware(jwtService)

	group := router.Group("", m.JWTAuth())
	if len(roles) > 0 {
		group.Use(m.RoleRequired(roles...))
	}
	group.GET("/whoami", func(c *gin.Context) {
		viewer := ViewerFrom(c)
		c.JSON(http.StatusOK, gin.H{"role": string(viewer.Role), "personId": viewer.PersonID})
	})
	return router
}

func whoami(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour})
	router := testRouter(jwtService)

	if code := whoami(router, "").Code; code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without a token", code)
	}
	if code := whoami(router, "Bearer not.a.token").Code; code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for a garbage token", code)
	}
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour})
	router := testRouter(jwtService)

	token, _, err := jwtService.GenerateToken(1, "admin", string(models.RoleAdmin), 0)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	recorder := whoami(router, "Bearer "+token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", recorder.Code, recorder.Body.String())
	}
}

func TestRoleRequired(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour})
	router := testRouter(jwtService, models.RoleAdmin, models.RoleTeacher)

	teacherToken, _, err := jwtService.GenerateToken(2, "teacher", string(models.RoleTeacher), 5)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if code := whoami(router, "Bearer "+teacherToken).Code; code != http.StatusOK {
		t.Errorf("teacher status = %d, want 200", code)
	}

	studentToken, _, err := jwtService.GenerateToken(3, "student", string(models.RoleStudent), 9)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if code := whoami(router, "Bearer "+studentToken).Code; code != http.StatusForbidden {
		t.Errorf("student status = %d, want 403", code)
	}
}

func TestViewerFromContext(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour})

	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	token, _, err := jwtService.GenerateToken(11, "parent", string(models.RoleParent), 3)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	c.Request.Header.Set("Authorization", "Bearer "+token)
	NewAuthMiddleware(jwtService).JWTAuth()(c)

	viewer := ViewerFrom(c)
	if viewer.Role != models.RoleParent || viewer.UserID != 11 || viewer.PersonID != 3 {
		t.Errorf("viewer = %+v", viewer)
	}
}
