// models/game.go
package models

import (
	"fmt"
	"sort"
	"time"
)

// Period identifies the academic period a game runs in.
type Period string

const (
	PeriodQuadrimester1 Period = "Quadrimester1"
	PeriodQuadrimester2 Period = "Quadrimester2"
)

// ParsePeriod validates a raw period string coming from the API layer.
func ParsePeriod(raw string) (Period, bool) {
	switch Period(raw) {
	case PeriodQuadrimester1, PeriodQuadrimester2:
		return Period(raw), true
	}
	return "", false
}

// Game lifecycle states, derived from the date window — never persisted.
const (
	StatePreparation = "Preparation"
	StatePlaying     = "Playing"
	StateFinished    = "Finished"
)

// Game is a gamification instance scoped to (subject, course, period).
// It owns its rules and its group/project structure; the three level policy
// parameters are fixed at creation and only the date window is mutable.
type Game struct {
	SubjectAcronym string `json:"subject_acronym" gorm:"primaryKey;size:16"`
	Course         int    `json:"course" gorm:"primaryKey"`
	Period         Period `json:"period" gorm:"primaryKey;size:16"`

	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`

	FirstLevelPolicyParameter  float64 `json:"first_level_policy_parameter"`
	SecondLevelPolicyParameter float64 `json:"second_level_policy_parameter"`
	ThirdLevelPolicyParameter  float64 `json:"third_level_policy_parameter"`

	Rules      []Rule      `json:"rules,omitempty" gorm:"foreignKey:GameSubjectAcronym,GameCourse,GamePeriod;references:SubjectAcronym,Course,Period"`
	GameGroups []GameGroup `json:"game_groups,omitempty" gorm:"foreignKey:GameSubjectAcronym,GameCourse,GamePeriod;references:SubjectAcronym,Course,Period"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key renders the composite identifier the way it appears in logs and errors.
func (g *Game) Key() string {
	return fmt.Sprintf("%s/%d/%s", g.SubjectAcronym, g.Course, g.Period)
}

// State derives the lifecycle state at time t from the stored date window.
// Comparison is at day granularity: the start and end dates are both playable.
func (g *Game) State(t time.Time) string {
	day := DateOf(t)
	if day.Before(DateOf(g.StartDate)) {
		return StatePreparation
	}
	if day.After(DateOf(g.EndDate)) {
		return StateFinished
	}
	return StatePlaying
}

// CalculateLevel maps accumulated points to a discrete level using the game's
// three policy parameters as ascending point thresholds. Recomputed from
// scratch on every award, never incremented.
func (g *Game) CalculateLevel(points int) int {
	thresholds := []float64{
		g.FirstLevelPolicyParameter,
		g.SecondLevelPolicyParameter,
		g.ThirdLevelPolicyParameter,
	}
	sort.Float64s(thresholds)

	level := 0
	for _, threshold := range thresholds {
		if float64(points) >= threshold {
			level++
		}
	}
	return level
}

// GameGroup partitions a game's participants (e.g., a lab group).
type GameGroup struct {
	ID                 uint   `json:"id" gorm:"primaryKey"`
	Name               string `json:"name" gorm:"not null"`
	GameSubjectAcronym string `json:"game_subject_acronym" gorm:"size:16;index:idx_group_game"`
	GameCourse         int    `json:"game_course" gorm:"index:idx_group_game"`
	GamePeriod         Period `json:"game_period" gorm:"size:16;index:idx_group_game"`

	Projects []Project `json:"projects,omitempty" gorm:"foreignKey:GameGroupID"`
}

// Project is one project inside a group; it is played by exactly one team.
type Project struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"not null"`
	GameGroupID  uint   `json:"game_group_id" gorm:"index"`
	TeamPlayerID uint   `json:"team_player_id"`

	TeamPlayer Player `json:"team_player,omitempty" gorm:"foreignKey:TeamPlayerID"`
}

// DateOf truncates a timestamp to its UTC calendar day. All evaluation-pass
// bookkeeping (action log buckets, award dates, validity checks) works on days.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
