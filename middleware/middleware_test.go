package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(GatewayAuthMiddleware("secret"))
	app.Get("/open", func(c *fiber.Ctx) error { return c.SendString("ok") })
	s := app.Group("/s", UserContextMiddleware())
	s.Get("/me", func(c *fiber.Ctx) error { return c.SendString(c.Locals("user_id").(string)) })
	s.Get("/admin", RequireRole("admin"), func(c *fiber.Ctx) error { return c.SendString("admin") })
	return app
}

func TestMiddlewareChain(t *testing.T) {
	app := newApp()
	cases := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{"no token", "/open", nil, fiber.StatusUnauthorized},
		{"bad token", "/open", map[string]string{"Authorization": "Bearer nope"}, fiber.StatusUnauthorized},
		{"bearer token", "/open", map[string]string{"Authorization": "Bearer secret"}, fiber.StatusOK},
		{"raw token", "/open", map[string]string{"Authorization": "secret"}, fiber.StatusOK},
		{"no user", "/s/me", map[string]string{"Authorization": "secret"}, fiber.StatusUnauthorized},
		{"user", "/s/me", map[string]string{"Authorization": "secret", "X-User-ID": "u1"}, fiber.StatusOK},
		{"not admin", "/s/admin", map[string]string{"Authorization": "secret", "X-User-ID": "u1", "X-User-Roles": "player"}, fiber.StatusForbidden},
		{"admin", "/s/admin", map[string]string{"Authorization": "secret", "X-User-ID": "u1", "X-User-Roles": "player, Admin"}, fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}
