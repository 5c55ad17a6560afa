// models/action.go
package models

import "time"

// EvaluableAction is a kind of trackable player activity (e.g., "commit",
// "task_completed"). String-keyed so rules can reference actions by name.
type EvaluableAction struct {
	ID          string `json:"id" gorm:"primaryKey;size:64"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActionLog is the idempotent accumulation record: exactly one row per
// (evaluable action, player, UTC calendar day), holding the number of
// occurrences observed inside that day bucket. Rows are never deleted.
type ActionLog struct {
	ID                string    `json:"id" gorm:"primaryKey;size:36"`
	EvaluableActionID string    `json:"evaluable_action_id" gorm:"size:64;uniqueIndex:idx_action_log_key"`
	PlayerID          uint      `json:"player_id" gorm:"uniqueIndex:idx_action_log_key"`
	Date              time.Time `json:"date" gorm:"uniqueIndex:idx_action_log_key"`
	Count             int       `json:"count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
