// handlers/profile_routes.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"rhythm-unlock-service/services"
	"rhythm-unlock-service/unlock"
)

func SetupProfileRoutes(secured fiber.Router, profiles *services.ProfileService) {
	secured.Post("/profiles", func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid JSON", err)
		}
		if req.Name == "" {
			return fail(c, fiber.StatusBadRequest, "name is required", nil)
		}
		p, err := profiles.CreateProfile(req.Name)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "failed to create profile", err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	secured.Get("/profiles/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		p, ok := profiles.Profile(id)
		if !ok {
			return fail(c, fiber.StatusNotFound, "profile not found", nil)
		}
		return c.JSON(fiber.Map{
			"profile": p,
			"grants":  profiles.Grants(id),
		})
	})

	// Game client reports a finished stage.
	secured.Post("/profiles/:id/stages", func(c *fiber.Ctx) error {
		var req struct {
			Grade       string `json:"grade"`
			Mode        string `json:"mode"`
			DancePoints int    `json:"dance_points"`
			Passed      bool   `json:"passed"`
			ExtraStage  bool   `json:"extra_stage"`
			Toasties    int    `json:"toasties"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid JSON", err)
		}
		grade, ok := unlock.ParseGrade(req.Grade)
		if !ok {
			return fail(c, fiber.StatusBadRequest, "unknown grade "+strconv.Quote(req.Grade), nil)
		}
		mode := unlock.PlayModeRegular
		if req.Mode != "" {
			if mode, ok = unlock.ParsePlayMode(req.Mode); !ok {
				return fail(c, fiber.StatusBadRequest, "unknown play mode "+strconv.Quote(req.Mode), nil)
			}
		}

		err := profiles.RecordStage(c.Params("id"), services.StageResult{
			Grade:       grade,
			Mode:        mode,
			DancePoints: req.DancePoints,
			Passed:      req.Passed,
			ExtraStage:  req.ExtraStage,
			Toasties:    req.Toasties,
		})
		if errors.Is(err, services.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "profile not found", err)
		}
		if errors.Is(err, services.ErrInvalidStage) {
			return fail(c, fiber.StatusBadRequest, "invalid stage result", err)
		}
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "failed to record stage", err)
		}
		return c.JSON(fiber.Map{"message": "stage recorded"})
	})
}
