// models/achievement.go
package models

import "time"

// Achievement categories. Only Points awards touch the player's points and
// level; the others record the logged achievement and nothing else.
const (
	AchievementCategoryPoints = "Points"
	AchievementCategoryBadge  = "Badge"
	AchievementCategoryTrophy = "Trophy"
)

// Achievement is a catalog entry describing what can be awarded.
type Achievement struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null"`
	Category string `json:"category" gorm:"size:16;not null"`
	IconURL  string `json:"icon_url" gorm:"type:text"` // public object-storage URL

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AchievementAssignment attaches an achievement to a rule: at which level it
// is assessed, how many qualifying occurrences it takes to satisfy it, and
// how many units (points) a single award is worth.
type AchievementAssignment struct {
	ID            uint        `json:"id" gorm:"primaryKey"`
	AchievementID uint        `json:"achievement_id" gorm:"index"`
	Achievement   Achievement `json:"achievement,omitempty" gorm:"foreignKey:AchievementID"`

	AssessmentLevel    string `json:"assessment_level" gorm:"size:16;not null"` // Team | Individual
	ConditionThreshold int    `json:"condition_threshold" gorm:"default:1"`
	AchievementUnits   int    `json:"achievement_units" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssignmentProgress accumulates qualifying occurrences per assignment and
// evaluated player. SatisfiedAt is the at-most-once-per-crossing guard: once
// set, the rule never re-fires for that player without a new assignment.
type AssignmentProgress struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	AssignmentID uint       `json:"assignment_id" gorm:"uniqueIndex:idx_progress_key"`
	PlayerID     uint       `json:"player_id" gorm:"uniqueIndex:idx_progress_key"`
	Accumulated  int        `json:"accumulated" gorm:"default:0"`
	SatisfiedAt  *time.Time `json:"satisfied_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssignmentConsumption marks one action-log bucket as already counted by an
// assignment's accumulation condition, making re-evaluation idempotent.
type AssignmentConsumption struct {
	AssignmentID uint   `json:"assignment_id" gorm:"uniqueIndex:idx_consumption_key"`
	ActionLogID  string `json:"action_log_id" gorm:"uniqueIndex:idx_consumption_key;size:36"`

	CreatedAt time.Time `json:"created_at"`
}

// LoggedAchievement is one persisted award instance. Append-only; the engine
// never deduplicates beyond the rule's own trigger semantics.
type LoggedAchievement struct {
	ID   string    `json:"id" gorm:"primaryKey;size:36"`
	Date time.Time `json:"date" gorm:"not null"`

	AchievementAssignmentID uint                  `json:"achievement_assignment_id" gorm:"index"`
	AchievementAssignment   AchievementAssignment `json:"achievement_assignment,omitempty" gorm:"foreignKey:AchievementAssignmentID"`

	PlayerID uint   `json:"player_id" gorm:"index"`
	Player   Player `json:"player,omitempty" gorm:"foreignKey:PlayerID"`

	CreatedAt time.Time `json:"created_at"`
}
