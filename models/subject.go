package models

import "time"

// Subject is the course-catalog entry games are created under. The catalog is
// maintained by the learning platform; the engine only reads it.
type Subject struct {
	Acronym      string `json:"acronym" gorm:"primaryKey;size:16"`
	Name         string `json:"name" gorm:"not null"`
	School       string `json:"school"`
	StudyProgram string `json:"study_program"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
