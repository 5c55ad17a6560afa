// services/action_log_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gamification-engine/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActionLogService struct {
	DB *gorm.DB
}

func NewActionLogService(db *gorm.DB) *ActionLogService {
	return &ActionLogService{DB: db}
}

// Log is the external action-logging boundary: one call = one observed
// occurrence. It increments the (action, player, day) bucket, creating the
// bucket with count 1 when absent.
func (s *ActionLogService) Log(actionID string, playername string, t time.Time) (*models.ActionLog, error) {
	day := models.DateOf(t)

	var entry models.ActionLog
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var action models.EvaluableAction
		if err := tx.Where("id = ?", actionID).First(&action).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Evaluable action", actionID)
			}
			return err
		}

		var player models.Player
		if err := tx.Where("playername = ?", playername).First(&player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Player", playername)
			}
			return err
		}

		err := tx.Where("evaluable_action_id = ? AND player_id = ? AND date = ?", actionID, player.ID, day).
			First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = models.ActionLog{
				ID:                uuid.NewString(),
				EvaluableActionID: actionID,
				PlayerID:          player.ID,
				Date:              day,
				Count:             1,
			}
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}

		entry.Count++
		return tx.Save(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetOrCreate returns the single ActionLog row for (action, player, UTC day
// of t), creating it with count 1 when absent — creation records this
// occurrence. Re-invoking with the same key returns the existing row
// untouched, so the same physical occurrence is never double-counted.
func (s *ActionLogService) GetOrCreate(tx *gorm.DB, actionID string, playerID uint, t time.Time) (*models.ActionLog, error) {
	day := models.DateOf(t)

	var action models.EvaluableAction
	if err := tx.Where("id = ?", actionID).First(&action).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluable action '%s' is not defined", actionID)
		}
		return nil, err
	}

	var entry models.ActionLog
	err := tx.Where("evaluable_action_id = ? AND player_id = ? AND date = ?", actionID, playerID, day).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry = models.ActionLog{
			ID:                uuid.NewString(),
			EvaluableActionID: actionID,
			PlayerID:          playerID,
			Date:              day,
			Count:             1,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return nil, err
		}
		return &entry, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ConsumeForAssignment feeds every not-yet-consumed bucket for (action,
// player) into the assignment's accumulation progress. Returns whether this
// pass newly contributed anything (the "counted" signal, not "threshold met")
// and the up-to-date progress row. Buckets filled between evaluation passes
// are picked up by the next pass.
func (s *ActionLogService) ConsumeForAssignment(tx *gorm.DB, assignmentID uint, actionID string, playerID uint) (bool, *models.AssignmentProgress, error) {
	var progress models.AssignmentProgress
	err := tx.Where("assignment_id = ? AND player_id = ?", assignmentID, playerID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.AssignmentProgress{AssignmentID: assignmentID, PlayerID: playerID}
		if err := tx.Create(&progress).Error; err != nil {
			return false, nil, err
		}
	} else if err != nil {
		return false, nil, err
	}

	var unconsumed []models.ActionLog
	consumedIDs := tx.Model(&models.AssignmentConsumption{}).
		Select("action_log_id").
		Where("assignment_id = ?", assignmentID)
	if err := tx.Where("evaluable_action_id = ? AND player_id = ?", actionID, playerID).
		Where("id NOT IN (?)", consumedIDs).
		Order("date ASC").
		Find(&unconsumed).Error; err != nil {
		return false, nil, err
	}

	if len(unconsumed) == 0 {
		return false, &progress, nil
	}

	for _, entry := range unconsumed {
		consumption := models.AssignmentConsumption{
			AssignmentID: assignmentID,
			ActionLogID:  entry.ID,
		}
		if err := tx.Create(&consumption).Error; err != nil {
			return false, nil, err
		}
		progress.Accumulated += entry.Count
	}

	if err := tx.Save(&progress).Error; err != nil {
		return false, nil, err
	}
	return true, &progress, nil
}
