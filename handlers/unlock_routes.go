// handlers/unlock_routes.go
package handlers

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"rhythm-unlock-service/services"
	"rhythm-unlock-service/unlock"
	"rhythm-unlock-service/utils"
)

type entryView struct {
	Index        int                `json:"index"`
	Name         string             `json:"name"`
	EntryID      int                `json:"entry_id"`
	Type         string             `json:"type"`
	Target       string             `json:"target"`
	Description  string             `json:"description"`
	BannerFile   string             `json:"banner_file,omitempty"`
	Background   string             `json:"background_file,omitempty"`
	Valid        bool               `json:"valid"`
	Locked       bool               `json:"locked"`
	RouletteOnly bool               `json:"roulette_only"`
	Requirements map[string]float64 `json:"requirements"`
}

func viewEntry(reg *unlock.Registry, enabled bool, i int, e *unlock.Entry) entryView {
	v := entryView{
		Index:        i,
		Name:         e.Name,
		EntryID:      e.ID,
		Type:         e.Type.String(),
		Target:       e.TargetRef(),
		Valid:        e.IsValid(),
		Locked:       enabled && reg.IsLocked(e),
		RouletteOnly: e.RouletteOnly,
		Requirements: make(map[string]float64),
	}
	if v.Valid {
		v.Description = e.Description()
		v.BannerFile = e.BannerFile()
		v.Background = e.BackgroundFile()
	}
	for k := unlock.RequirementKind(0); k < unlock.NumRequirements; k++ {
		if req := e.Requirement(k); req != 0 {
			v.Requirements[k.String()] = req
		}
	}
	return v
}

func scoresMap(s unlock.Scores) map[string]float64 {
	out := make(map[string]float64, len(s))
	for k, v := range s {
		out[unlock.RequirementKind(k).String()] = v
	}
	return out
}

func entryIDParam(c *fiber.Ctx) (int, error) {
	return strconv.Atoi(c.Params("id"))
}

func SetupUnlockRoutes(app fiber.Router, secured fiber.Router, admin fiber.Router, svc *services.UnlockService) {
	reg := svc.Registry()

	app.Get("/unlocks", func(c *fiber.Ctx) error {
		typeFilter := c.Query("type")
		want := unlock.RewardInvalid
		if typeFilter != "" {
			t, ok := unlock.ParseRewardType(typeFilter)
			if !ok {
				return fail(c, fiber.StatusBadRequest, "unknown reward type", nil)
			}
			want = t
		}

		enabled := svc.Enabled()
		// Filtered views keep the registry index so clients can address entries by it.
		entries := reg.Entries()
		out := make([]entryView, 0, len(entries))
		for i := range entries {
			if want != unlock.RewardInvalid && (entries[i].Type != want || !entries[i].IsValid()) {
				continue
			}
			out = append(out, viewEntry(reg, enabled, i, &entries[i]))
		}
		return c.JSON(fiber.Map{
			"enabled": enabled,
			"state":   reg.State().String(),
			"count":   len(out),
			"entries": out,
		})
	})

	app.Get("/unlocks/scores", func(c *fiber.Ctx) error {
		return c.JSON(scoresMap(reg.Scores()))
	})

	app.Get("/unlocks/points/:kind", func(c *fiber.Ctx) error {
		kind, ok := unlock.ParseRequirementKind(c.Params("kind"))
		if !ok {
			return fail(c, fiber.StatusBadRequest, "unknown requirement kind", nil)
		}
		return c.JSON(fiber.Map{
			"kind":              kind.String(),
			"current":           reg.Scores()[kind],
			"points_until_next": reg.PointsUntilNextUnlock(kind),
		})
	})

	app.Get("/unlocks/songs/:key", func(c *fiber.Ctx) error {
		key, _ := url.PathUnescape(c.Params("key"))
		song, ok := svc.Catalog.FindSong(key)
		if !ok {
			return fail(c, fiber.StatusNotFound, "song not found", nil)
		}
		resp := fiber.Map{
			"song":          song.Key,
			"locked":        reg.IsSongLocked(song),
			"roulette_only": reg.IsSongRouletteOnly(song),
		}
		if d := c.Query("difficulty"); d != "" {
			diff := unlock.ParseDifficulty(d)
			if diff == unlock.DifficultyInvalid {
				return fail(c, fiber.StatusBadRequest, "unknown difficulty", nil)
			}
			resp["difficulty"] = diff.String()
			resp["steps_locked"] = reg.IsStepsLocked(song, diff)
		}
		return c.JSON(resp)
	})

	app.Get("/unlocks/courses/:key", func(c *fiber.Ctx) error {
		key, _ := url.PathUnescape(c.Params("key"))
		course, ok := svc.Catalog.FindCourse(key)
		if !ok {
			return fail(c, fiber.StatusNotFound, "course not found", nil)
		}
		return c.JSON(fiber.Map{"course": course.Key, "locked": reg.IsCourseLocked(course)})
	})

	app.Get("/unlocks/mods/:mod", func(c *fiber.Ctx) error {
		mod, _ := url.PathUnescape(c.Params("mod"))
		return c.JSON(fiber.Map{"modifier": mod, "locked": reg.IsModifierLocked(mod)})
	})

	app.Get("/unlocks/lookup", func(c *fiber.Ctx) error {
		name := c.Query("name")
		if name == "" {
			return fail(c, fiber.StatusBadRequest, "name is required", nil)
		}
		id := reg.FindEntryIDByName(name)
		if id == unlock.NoEntryID {
			return fail(c, fiber.StatusNotFound, "no unlock entry matches", nil)
		}
		return c.JSON(fiber.Map{"name": name, "entry_id": id})
	})

	app.Get("/unlocks/entries/:id", func(c *fiber.Ctx) error {
		id, err := entryIDParam(c)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid entry id", err)
		}
		type stepsView struct {
			Song       string `json:"song"`
			Difficulty string `json:"difficulty"`
		}
		songs := []string{}
		for _, s := range reg.SongsUnlockedByEntryID(id) {
			songs = append(songs, s.Key)
		}
		steps := []stepsView{}
		stepSongs, diffs := reg.StepsUnlockedByEntryID(id)
		for i := range stepSongs {
			steps = append(steps, stepsView{Song: stepSongs[i].Key, Difficulty: diffs[i].String()})
		}
		return c.JSON(fiber.Map{
			"entry_id": id,
			"roulette": reg.IsRouletteCode(id),
			"songs":    songs,
			"steps":    steps,
		})
	})

	app.Post("/unlocks/entries/:id/prefer", func(c *fiber.Ctx) error {
		id, err := entryIDParam(c)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid entry id", err)
		}
		reg.PreferEntryID(id)
		resp := fiber.Map{"entry_id": id}
		if s, ok := svc.GameState.PreferredSong(); ok {
			resp["preferred_song"] = s.Key
		}
		if cr, ok := svc.GameState.PreferredCourse(); ok {
			resp["preferred_course"] = cr.Key
		}
		return c.JSON(resp)
	})

	// Roulette landed on a song: make it permanently available.
	secured.Post("/songs/:key/unlock", func(c *fiber.Ctx) error {
		key, _ := url.PathUnescape(c.Params("key"))
		song, ok := svc.Catalog.FindSong(key)
		if !ok {
			return fail(c, fiber.StatusNotFound, "song not found", nil)
		}
		reg.UnlockSong(song)
		return c.JSON(fiber.Map{"song": song.Key, "locked": reg.IsSongLocked(song)})
	})

	admin.Post("/unlocks/:id/grant", func(c *fiber.Ctx) error {
		id, err := entryIDParam(c)
		if err != nil || id == unlock.NoEntryID {
			return fail(c, fiber.StatusBadRequest, "invalid entry id", err)
		}
		reg.GrantEntryID(id)
		utils.Log.Infof("[Unlock] entry %d granted by %v", id, c.Locals("user_id"))
		return c.JSON(fiber.Map{"message": "entry granted", "entry_id": id})
	})

	admin.Post("/unlocks/reload", func(c *fiber.Ctx) error {
		if err := svc.Reload(c.UserContext()); err != nil {
			return fail(c, fiber.StatusInternalServerError, "reload failed", err)
		}
		return c.JSON(fiber.Map{"message": "unlocks reloaded", "count": reg.NumUnlocks()})
	})

	admin.Post("/unlocks/resolve", func(c *fiber.Ctx) error {
		reg.Resolve()
		return c.JSON(fiber.Map{
			"message": "unlocks resolved",
			"songs":   len(reg.UnlocksByType(unlock.RewardSong)),
			"steps":   len(reg.UnlocksByType(unlock.RewardSteps)),
			"courses": len(reg.UnlocksByType(unlock.RewardCourse)),
		})
	})

	admin.Put("/unlocks/enabled", func(c *fiber.Ctx) error {
		var req struct {
			Enabled *bool `json:"enabled"`
		}
		if err := c.BodyParser(&req); err != nil || req.Enabled == nil {
			return fail(c, fiber.StatusBadRequest, "invalid JSON", err)
		}
		svc.SetEnabled(*req.Enabled)
		return c.JSON(fiber.Map{"enabled": svc.Enabled()})
	})
}
