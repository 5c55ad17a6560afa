// services/player_service.go
package services

import (
	"errors"

	"gamification-engine/models"

	"gorm.io/gorm"
)

type PlayerService struct {
	DB *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{DB: db}
}

// GetPlayer resolves a player by playername, with members preloaded for
// teams.
func (s *PlayerService) GetPlayer(playername string) (*models.Player, error) {
	var player models.Player
	err := s.DB.Where("playername = ?", playername).
		Preload("Members").
		First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Player", playername)
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// Progression is the dashboard-facing read model for one player.
type Progression struct {
	Playername   string                     `json:"playername"`
	Type         string                     `json:"type"`
	Points       int                        `json:"points"`
	Level        int                        `json:"level"`
	Team         string                     `json:"team,omitempty"`
	Achievements []models.LoggedAchievement `json:"achievements"`
}

// GetProgression returns a player's points, level, owning team, and award
// history in one shot.
func (s *PlayerService) GetProgression(playername string) (*Progression, error) {
	player, err := s.GetPlayer(playername)
	if err != nil {
		return nil, err
	}

	progression := &Progression{
		Playername: player.Playername,
		Type:       player.Type,
		Points:     player.Points,
		Level:      player.Level,
	}

	if player.TeamID != nil {
		var team models.Player
		if err := s.DB.Where("id = ?", *player.TeamID).First(&team).Error; err == nil {
			progression.Team = team.Playername
		}
	}

	achievements := []models.LoggedAchievement{}
	if err := s.DB.Where("player_id = ?", player.ID).
		Preload("AchievementAssignment.Achievement").
		Order("date DESC, id ASC").
		Find(&achievements).Error; err != nil {
		return nil, err
	}
	progression.Achievements = achievements
	return progression, nil
}
