// models/rule.go
package models

import "time"

// Rule binds an evaluable action and a validity window to an achievement
// assignment. EvaluationLevel decides which player population the engine
// walks (teams or individuals); it is independent of the assignment's
// assessment level and the two may legitimately mismatch.
type Rule struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`

	GameSubjectAcronym string `json:"game_subject_acronym" gorm:"size:16;index:idx_rule_game"`
	GameCourse         int    `json:"game_course" gorm:"index:idx_rule_game"`
	GamePeriod         Period `json:"game_period" gorm:"size:16;index:idx_rule_game"`

	EvaluableActionID string `json:"evaluable_action_id" gorm:"not null;index"`
	EvaluationLevel   string `json:"evaluation_level" gorm:"size:16;not null"` // Team | Individual

	// Validity window; must fall within the owning game's window.
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`

	AchievementAssignmentID uint                  `json:"achievement_assignment_id"`
	AchievementAssignment   AchievementAssignment `json:"achievement_assignment,omitempty" gorm:"foreignKey:AchievementAssignmentID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidOn reports whether the rule's validity window contains the given day.
func (r *Rule) ValidOn(day time.Time) bool {
	day = DateOf(day)
	return !day.Before(DateOf(r.StartDate)) && !day.After(DateOf(r.EndDate))
}
