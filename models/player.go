// models/player.go
package models

import "time"

// PlayerType tags the two player variants. Propagation logic switches on this
// tag explicitly; there is no runtime downcasting anywhere.
const (
	PlayerTypeTeam       = "Team"
	PlayerTypeIndividual = "Individual"
)

// Player is either a Team (owning an ordered set of individual members) or an
// Individual (back-referencing its owning team). Points only ever increase
// during evaluation and Level is always the game policy applied to Points.
type Player struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Playername string `json:"playername" gorm:"uniqueIndex;not null"`
	Type       string `json:"type" gorm:"size:16;not null"` // Team | Individual

	Points int `json:"points" gorm:"default:0"`
	Level  int `json:"level" gorm:"default:0"`

	// Set iff this is an Individual belonging to a team.
	TeamID *uint `json:"team_id,omitempty" gorm:"index"`

	// Populated for Team players; ordered by insertion.
	Members []Player `json:"members,omitempty" gorm:"foreignKey:TeamID"`

	// Individual-only profile fields filled by the roster sync worker.
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTeam reports whether the player is the team variant.
func (p *Player) IsTeam() bool {
	return p.Type == PlayerTypeTeam
}
