// handlers/game.go
package handlers

import (
	"strconv"
	"time"

	"gamification-engine/middleware"
	"gamification-engine/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(app *fiber.App, gameService *services.GameService, evaluationService *services.EvaluationService) {
	// 🔓 Read-only routes — no user context, still behind gateway auth
	app.Get("/games", func(c *fiber.Ctx) error {
		filter := services.GameFilter{
			SubjectAcronym: c.Query("subject"),
			Period:         c.Query("period"),
		}
		if raw := c.Query("course"); raw != "" {
			course, err := strconv.Atoi(raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "course must be a number"})
			}
			filter.Course = &course
		}

		games, err := gameService.ListGames(filter)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(games)
	})

	app.Get("/subjects", func(c *fiber.Ctx) error {
		subjects, err := gameService.ListSubjects()
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(subjects)
	})

	app.Get("/subjects/:acronym", func(c *fiber.Ctx) error {
		subject, err := gameService.GetSubject(c.Params("acronym"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(subject)
	})

	app.Get("/games/:subject/:course/:period", func(c *fiber.Ctx) error {
		subject, course, period, err := gameKeyParams(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		game, svcErr := gameService.GetGame(subject, course, period)
		if svcErr != nil {
			return writeServiceError(c, svcErr)
		}
		return c.JSON(game)
	})

	// 🔐 Secured routes — instructor context required
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/games", func(c *fiber.Ctx) error {
		type Req struct {
			SubjectAcronym             string  `json:"subject_acronym"`
			Course                     int     `json:"course"`
			Period                     string  `json:"period"`
			StartDate                  string  `json:"start_date"`
			EndDate                    string  `json:"end_date"`
			FirstLevelPolicyParameter  float64 `json:"first_level_policy_parameter"`
			SecondLevelPolicyParameter float64 `json:"second_level_policy_parameter"`
			ThirdLevelPolicyParameter  float64 `json:"third_level_policy_parameter"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		start, end, err := parseDateRange(req.StartDate, req.EndDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		game, svcErr := gameService.CreateGame(req.SubjectAcronym, req.Course, req.Period, start, end,
			req.FirstLevelPolicyParameter, req.SecondLevelPolicyParameter, req.ThirdLevelPolicyParameter)
		if svcErr != nil {
			return writeServiceError(c, svcErr)
		}
		return c.Status(fiber.StatusCreated).JSON(game)
	})

	secured.Put("/games/:subject/:course/:period", func(c *fiber.Ctx) error {
		subject, course, _, err := gameKeyParams(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		type Req struct {
			StartDate string `json:"start_date"`
			EndDate   string `json:"end_date"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		start, end, err := parseDateRange(req.StartDate, req.EndDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		game, svcErr := gameService.UpdateGame(subject, course, c.Params("period"), start, end)
		if svcErr != nil {
			return writeServiceError(c, svcErr)
		}
		return c.JSON(game)
	})

	secured.Post("/games/:subject/:course/:period/evaluate", func(c *fiber.Ctx) error {
		subject, course, _, err := gameKeyParams(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		report, svcErr := evaluationService.EvaluateGame(subject, course, c.Params("period"))
		if svcErr != nil {
			return writeServiceError(c, svcErr)
		}
		return c.JSON(report)
	})
}

func gameKeyParams(c *fiber.Ctx) (string, int, string, error) {
	course, err := strconv.Atoi(c.Params("course"))
	if err != nil {
		return "", 0, "", fiber.NewError(fiber.StatusBadRequest, "course must be a number")
	}
	return c.Params("subject"), course, c.Params("period"), nil
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	var startDate, endDate time.Time
	var err error
	if start != "" {
		if startDate, err = time.Parse("2006-01-02", start); err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
		}
	}
	if end != "" {
		if endDate, err = time.Parse("2006-01-02", end); err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
		}
	}
	return startDate, endDate, nil
}

// writeServiceError maps the engine's typed errors onto HTTP statuses.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case services.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case services.IsConstraintViolation(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
