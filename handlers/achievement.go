// handlers/achievement.go
package handlers

import (
	"path/filepath"
	"time"

	"gamification-engine/middleware"
	"gamification-engine/services"
	"gamification-engine/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupAchievementRoutes(app *fiber.App, achievementService *services.AchievementService, playerService *services.PlayerService, actionLogService *services.ActionLogService) {
	app.Get("/achievements", func(c *fiber.Ctx) error {
		achievements, err := achievementService.ListAchievements()
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(achievements)
	})

	app.Get("/players/:playername/achievements", func(c *fiber.Ctx) error {
		logged, err := achievementService.PlayerAchievements(c.Params("playername"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(logged)
	})

	app.Get("/players/:playername/progression", func(c *fiber.Ctx) error {
		progression, err := playerService.GetProgression(c.Params("playername"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(progression)
	})

	// External action-logging boundary: one call = one observed occurrence.
	app.Post("/actions/:id/log", func(c *fiber.Ctx) error {
		type Req struct {
			Playername string `json:"playername"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.Playername == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "playername is required"})
		}

		entry, err := actionLogService.Log(c.Params("id"), req.Playername, time.Now())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(entry)
	})

	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/achievements", func(c *fiber.Ctx) error {
		name := c.FormValue("name")
		category := c.FormValue("category")

		iconURL := ""
		if iconFile, err := c.FormFile("icon"); err == nil && iconFile.Size > 0 {
			iconExt := filepath.Ext(iconFile.Filename)
			if iconExt == "" {
				iconExt = ".png"
			}
			iconKey := "icons/" + uuid.NewString() + iconExt
			url, err := utils.UploadIcon(iconFile, iconKey)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).
					JSON(fiber.Map{"error": "failed to upload achievement icon"})
			}
			iconURL = url
		}

		achievement, err := achievementService.CreateAchievement(name, category, iconURL)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(achievement)
	})
}
