// handlers/catalog_routes.go
package handlers

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"rhythm-unlock-service/models"
	"rhythm-unlock-service/services"
)

func catalogError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "not found", err)
	case errors.Is(err, services.ErrDuplicate):
		return fail(c, fiber.StatusConflict, "already exists", err)
	default:
		return fail(c, fiber.StatusBadRequest, "catalog update failed", err)
	}
}

// SetupCatalogRoutes exposes the catalog for reading and, to admins, editing.
// Edits bump the catalog generation; the resolve scheduler picks them up.
func SetupCatalogRoutes(app fiber.Router, admin fiber.Router, catalog *services.CatalogService) {
	app.Get("/catalog/songs", func(c *fiber.Ctx) error {
		return c.JSON(catalog.Songs())
	})
	app.Get("/catalog/courses", func(c *fiber.Ctx) error {
		return c.JSON(catalog.Courses())
	})

	admin.Post("/songs", func(c *fiber.Ctx) error {
		var req struct {
			Title          string `json:"title"`
			Artist         string `json:"artist"`
			BannerPath     string `json:"banner_path"`
			BackgroundPath string `json:"background_path"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid JSON", err)
		}
		song, err := catalog.AddSong(models.Song{
			Title:          req.Title,
			Artist:         req.Artist,
			BannerPath:     req.BannerPath,
			BackgroundPath: req.BackgroundPath,
		})
		if err != nil {
			return catalogError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(song)
	})

	admin.Put("/songs/:key", func(c *fiber.Ctx) error {
		var req struct {
			Title string `json:"title"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid JSON", err)
		}
		key, _ := url.PathUnescape(c.Params("key"))
		song, err := catalog.RenameSong(key, req.Title)
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(song)
	})

	admin.Delete("/songs/:key", func(c *fiber.Ctx) error {
		key, _ := url.PathUnescape(c.Params("key"))
		if err := catalog.DeleteSong(key); err != nil {
			return catalogError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	admin.Post("/courses", func(c *fiber.Ctx) error {
		var req struct {
			Title      string `json:"title"`
			BannerPath string `json:"banner_path"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid JSON", err)
		}
		course, err := catalog.AddCourse(models.Course{Title: req.Title, BannerPath: req.BannerPath})
		if err != nil {
			return catalogError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(course)
	})

	admin.Put("/courses/:key", func(c *fiber.Ctx) error {
		var req struct {
			Title string `json:"title"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid JSON", err)
		}
		key, _ := url.PathUnescape(c.Params("key"))
		course, err := catalog.RenameCourse(key, req.Title)
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(course)
	})

	admin.Delete("/courses/:key", func(c *fiber.Ctx) error {
		key, _ := url.PathUnescape(c.Params("key"))
		if err := catalog.DeleteCourse(key); err != nil {
			return catalogError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
