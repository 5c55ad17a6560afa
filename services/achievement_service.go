// services/achievement_service.go
package services

import (
	"errors"
	"time"

	"gamification-engine/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AchievementService struct {
	DB *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{DB: db}
}

// CreateAchievement adds a catalog entry. The icon URL points at the object
// storage bucket and may be empty for icon-less achievements.
func (s *AchievementService) CreateAchievement(name, category, iconURL string) (*models.Achievement, error) {
	if name == "" {
		return nil, constraintViolation("Achievement name cannot be blank")
	}
	switch category {
	case models.AchievementCategoryPoints, models.AchievementCategoryBadge, models.AchievementCategoryTrophy:
	default:
		return nil, constraintViolation("Unknown achievement category '%s'", category)
	}

	achievement := models.Achievement{Name: name, Category: category, IconURL: iconURL}
	if err := s.DB.Create(&achievement).Error; err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (s *AchievementService) ListAchievements() ([]models.Achievement, error) {
	achievements := []models.Achievement{}
	if err := s.DB.Order("id ASC").Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

// PlayerAchievements lists all award instances for a player, newest first.
func (s *AchievementService) PlayerAchievements(playername string) ([]models.LoggedAchievement, error) {
	var player models.Player
	if err := s.DB.Where("playername = ?", playername).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Player", playername)
		}
		return nil, err
	}

	logged := []models.LoggedAchievement{}
	if err := s.DB.Where("player_id = ?", player.ID).
		Preload("AchievementAssignment.Achievement").
		Order("date DESC, id ASC").
		Find(&logged).Error; err != nil {
		return nil, err
	}
	return logged, nil
}

// Award persists one LoggedAchievement for the target player and, for
// Points-category achievements, credits the assignment's units and recomputes
// the level from scratch through the game's policy. Runs inside the caller's
// evaluation transaction.
func (s *AchievementService) Award(tx *gorm.DB, game *models.Game, assignment *models.AchievementAssignment, target *models.Player, date time.Time) error {
	logged := models.LoggedAchievement{
		ID:                      uuid.NewString(),
		Date:                    models.DateOf(date),
		AchievementAssignmentID: assignment.ID,
		PlayerID:                target.ID,
	}
	if err := tx.Create(&logged).Error; err != nil {
		return err
	}

	if assignment.Achievement.Category != models.AchievementCategoryPoints {
		return nil
	}

	// Read-modify-write against the row, not the passed struct: the same
	// player can be credited through several propagation paths in one pass,
	// and a stale in-memory copy must never overwrite an earlier award.
	var current models.Player
	if err := tx.Where("id = ?", target.ID).First(&current).Error; err != nil {
		return err
	}
	points := current.Points + assignment.AchievementUnits
	level := game.CalculateLevel(points)
	if err := tx.Model(&models.Player{}).
		Where("id = ?", target.ID).
		Updates(map[string]any{"points": points, "level": level}).Error; err != nil {
		return err
	}
	target.Points = points
	target.Level = level
	return nil
}
