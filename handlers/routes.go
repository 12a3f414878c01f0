// handlers/routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"rhythm-unlock-service/middleware"
	"rhythm-unlock-service/services"
)

// SetupRoutes mounts every route. Machine-facing queries live at the root,
// player actions under /s and editor/operator actions under /s/admin.
func SetupRoutes(app *fiber.App, svc *services.UnlockService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())
	admin := secured.Group("/admin", middleware.RequireRole("admin"))

	SetupUnlockRoutes(app, secured, admin, svc)
	SetupCatalogRoutes(app, admin, svc.Catalog)
	SetupProfileRoutes(secured, svc.Profiles)
}

func fail(c *fiber.Ctx, status int, msg string, err error) error {
	body := fiber.Map{"error": msg}
	if err != nil {
		body["cause"] = err.Error()
	}
	return c.Status(status).JSON(body)
}
