// services/game_service.go
package services

import (
	"errors"
	"time"

	"gamification-engine/models"

	"gorm.io/gorm"
)

type GameService struct {
	DB *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{DB: db}
}

// ListSubjects returns the subject catalog the learning platform maintains.
func (s *GameService) ListSubjects() ([]models.Subject, error) {
	subjects := []models.Subject{}
	if err := s.DB.Order("acronym ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

// GetSubject resolves one catalog entry by acronym.
func (s *GameService) GetSubject(acronym string) (*models.Subject, error) {
	var subject models.Subject
	err := s.DB.Where("acronym = ?", acronym).First(&subject).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Subject", acronym)
	}
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// GameFilter carries the optional, independently combinable listing filters.
// Zero values mean "no constraint".
type GameFilter struct {
	SubjectAcronym string
	Course         *int
	Period         string
}

// ListGames returns every game matching the filter, empty slice when nothing
// matches.
func (s *GameService) ListGames(filter GameFilter) ([]models.Game, error) {
	query := s.DB.Order("subject_acronym ASC, course ASC, period ASC")
	if filter.SubjectAcronym != "" {
		query = query.Where("subject_acronym = ?", filter.SubjectAcronym)
	}
	if filter.Course != nil {
		query = query.Where("course = ?", *filter.Course)
	}
	if filter.Period != "" {
		period, ok := models.ParsePeriod(filter.Period)
		if !ok {
			return nil, constraintViolation("Unknown period '%s'", filter.Period)
		}
		query = query.Where("period = ?", period)
	}

	games := []models.Game{}
	if err := query.Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// GetGame resolves a game by its composite key.
func (s *GameService) GetGame(subjectAcronym string, course int, rawPeriod string) (*models.Game, error) {
	period, ok := models.ParsePeriod(rawPeriod)
	if !ok {
		return nil, constraintViolation("Unknown period '%s'", rawPeriod)
	}
	return getGameByKey(s.DB, subjectAcronym, course, period)
}

func getGameByKey(tx *gorm.DB, subjectAcronym string, course int, period models.Period) (*models.Game, error) {
	var game models.Game
	err := tx.Where("subject_acronym = ? AND course = ? AND period = ?", subjectAcronym, course, period).
		First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		key := (&models.Game{SubjectAcronym: subjectAcronym, Course: course, Period: period}).Key()
		return nil, notFound("Game", key)
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// CreateGame registers a new game under an existing subject. The three level
// policy parameters are fixed for the game's whole lifetime.
func (s *GameService) CreateGame(subjectAcronym string, course int, rawPeriod string, startDate, endDate time.Time, p1, p2, p3 float64) (*models.Game, error) {
	if subjectAcronym == "" || rawPeriod == "" || course == 0 || startDate.IsZero() || endDate.IsZero() {
		return nil, constraintViolation("Game attributes cannot be blank")
	}
	period, ok := models.ParsePeriod(rawPeriod)
	if !ok {
		return nil, constraintViolation("Unknown period '%s'", rawPeriod)
	}
	if startDate.After(endDate) {
		return nil, constraintViolation("Start date cannot be posterior to the end date, please introduce different dates")
	}

	var game models.Game
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var subject models.Subject
		if err := tx.Where("acronym = ?", subjectAcronym).First(&subject).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Subject", subjectAcronym)
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Game{}).
			Where("subject_acronym = ? AND course = ? AND period = ?", subjectAcronym, course, period).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return constraintViolation("This game already exists")
		}

		game = models.Game{
			SubjectAcronym:             subjectAcronym,
			Course:                     course,
			Period:                     period,
			StartDate:                  models.DateOf(startDate),
			EndDate:                    models.DateOf(endDate),
			FirstLevelPolicyParameter:  p1,
			SecondLevelPolicyParameter: p2,
			ThirdLevelPolicyParameter:  p3,
		}
		return tx.Create(&game).Error
	})
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// UpdateGame moves the date window of an existing game. Only dates are
// mutable after creation.
func (s *GameService) UpdateGame(subjectAcronym string, course int, rawPeriod string, startDate, endDate time.Time) (*models.Game, error) {
	if startDate.IsZero() || endDate.IsZero() {
		return nil, constraintViolation("Game dates cannot be blank")
	}
	period, ok := models.ParsePeriod(rawPeriod)
	if !ok {
		return nil, constraintViolation("Unknown period '%s'", rawPeriod)
	}
	if startDate.After(endDate) {
		return nil, constraintViolation("Start date cannot be posterior to the end date, please introduce different dates")
	}

	game, err := getGameByKey(s.DB, subjectAcronym, course, period)
	if err != nil {
		return nil, err
	}

	game.StartDate = models.DateOf(startDate)
	game.EndDate = models.DateOf(endDate)
	if err := s.DB.Save(game).Error; err != nil {
		return nil, err
	}
	return game, nil
}
