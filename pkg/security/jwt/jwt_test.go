package jwt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jobassist/backend/pkg/auth"
)

const (
	testSecret = "test-secret"
	testIssuer = "jobassist"
)

func protectedApp(secret, issuer string) *fiber.App {
	app := fiber.New()
	app.Use(NewAuthMiddleware(secret, issuer))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"scope": c.Locals("scope")})
	})
	return app
}

func request(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestMiddlewareAcceptsGeneratedToken(t *testing.T) {
	user := auth.User{ID: uuid.New(), Email: "user@example.com"}
	gen := NewGenerator(testSecret, testIssuer, time.Hour)
	token, err := gen.Generate(context.Background(), user)
	require.NoError(t, err)

	app := protectedApp(testSecret, testIssuer)
	require.Equal(t, http.StatusOK, request(t, app, "Bearer "+token).StatusCode)
	// Raw token without the Bearer prefix is accepted too.
	require.Equal(t, http.StatusOK, request(t, app, token).StatusCode)
}

func TestMiddlewareRejects(t *testing.T) {
	user := auth.User{ID: uuid.New()}
	app := protectedApp(testSecret, testIssuer)

	require.Equal(t, http.StatusUnauthorized, request(t, app, "").StatusCode)
	require.Equal(t, http.StatusUnauthorized, request(t, app, "Bearer not-a-token").StatusCode)

	wrongSecret, err := NewGenerator("other-secret", testIssuer, time.Hour).Generate(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, request(t, app, "Bearer "+wrongSecret).StatusCode)

	wrongIssuer, err := NewGenerator(testSecret, "someone-else", time.Hour).Generate(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, request(t, app, "Bearer "+wrongIssuer).StatusCode)

	expired, err := NewGenerator(testSecret, testIssuer, -time.Minute).Generate(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, request(t, app, "Bearer "+expired).StatusCode)
}

func TestSubjectBecomesScope(t *testing.T) {
	user := auth.User{ID: uuid.New()}
	token, err := NewGenerator(testSecret, testIssuer, time.Hour).Generate(context.Background(), user)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(NewAuthMiddleware(testSecret, testIssuer))
	var got string
	app.Get("/whoami", func(c *fiber.Ctx) error {
		got, _ = c.Locals("scope").(string)
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	_, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, user.ID.String(), got)
}
