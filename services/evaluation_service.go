// services/evaluation_service.go
package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"gamification-engine/models"

	"gorm.io/gorm"
)

// EvaluationService runs the rule-evaluation and achievement-propagation pass
// for one game at a time. A pass is one database transaction: either every
// effect (action-log buckets, logged achievements, point/level updates) is
// persisted or none are.
type EvaluationService struct {
	DB           *gorm.DB
	ActionLogs   *ActionLogService
	Achievements *AchievementService

	mu        sync.Mutex
	gameLocks map[string]*sync.Mutex
}

func NewEvaluationService(db *gorm.DB, actionLogs *ActionLogService, achievements *AchievementService) *EvaluationService {
	return &EvaluationService{
		DB:           db,
		ActionLogs:   actionLogs,
		Achievements: achievements,
		gameLocks:    make(map[string]*sync.Mutex),
	}
}

// RuleFailure records one isolated rule/player evaluation failure. The batch
// always continues past it.
type RuleFailure struct {
	RuleID            uint   `json:"rule_id"`
	EvaluableActionID string `json:"evaluable_action_id"`
	PlayerID          uint   `json:"player_id"`
	Error             string `json:"error"`
}

// EvaluationReport is the structured outcome of one evaluation pass.
type EvaluationReport struct {
	GameKey        string        `json:"game_key"`
	EvaluatedAt    time.Time     `json:"evaluated_at"`
	RulesEvaluated int           `json:"rules_evaluated"`
	RulesSkipped   int           `json:"rules_skipped"`
	Awards         int           `json:"awards"`
	Failures       []RuleFailure `json:"failures"`
}

// lockFor serializes concurrent passes over the same game key in-process.
// Cross-process callers still need external locking around EvaluateGame.
func (s *EvaluationService) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gameLocks[key] == nil {
		s.gameLocks[key] = &sync.Mutex{}
	}
	return s.gameLocks[key]
}

// EvaluateGame evaluates every valid rule of the game against the matching
// player population. Fails with NotFound for an unknown key and with
// ConstraintViolation when the game is not in its playing window; individual
// rule/player failures are collected into the report instead.
func (s *EvaluationService) EvaluateGame(subjectAcronym string, course int, rawPeriod string) (*EvaluationReport, error) {
	period, ok := models.ParsePeriod(rawPeriod)
	if !ok {
		return nil, constraintViolation("Unknown period '%s'", rawPeriod)
	}

	key := (&models.Game{SubjectAcronym: subjectAcronym, Course: course, Period: period}).Key()
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	report := &EvaluationReport{
		GameKey:     key,
		EvaluatedAt: now,
		Failures:    []RuleFailure{},
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		game, err := getGameByKey(tx, subjectAcronym, course, period)
		if err != nil {
			return err
		}

		if state := game.State(now); state != models.StatePlaying {
			return constraintViolation(
				"Game cannot be evaluated because its state is '%s' and not 'Playing', please try again only inside date range [%s,%s]",
				state, game.StartDate.Format("2006-01-02"), game.EndDate.Format("2006-01-02"))
		}

		if err := tx.Where("game_subject_acronym = ? AND game_course = ? AND game_period = ?", subjectAcronym, course, period).
			Preload("AchievementAssignment.Achievement").
			Order("id ASC").
			Find(&game.Rules).Error; err != nil {
			return err
		}
		if err := tx.Where("game_subject_acronym = ? AND game_course = ? AND game_period = ?", subjectAcronym, course, period).
			Preload("Projects.TeamPlayer.Members").
			Order("id ASC").
			Find(&game.GameGroups).Error; err != nil {
			return err
		}

		teams, individuals := playerPopulation(game)

		evaluationDay := models.DateOf(now)
		for i := range game.Rules {
			rule := &game.Rules[i]
			if !rule.ValidOn(evaluationDay) {
				report.RulesSkipped++
				continue
			}
			report.RulesEvaluated++

			population := individuals
			if rule.EvaluationLevel == models.PlayerTypeTeam {
				population = teams
			}

			for _, player := range population {
				// Savepoint per pair: a failing evaluation rolls back its own
				// writes without aborting the batch.
				awards := 0
				err := tx.Transaction(func(inner *gorm.DB) error {
					var evalErr error
					awards, evalErr = s.evaluateRule(inner, game, rule, player, now)
					return evalErr
				})
				if err == nil {
					report.Awards += awards
				}
				if err != nil {
					log.Printf("⚠️ [EVALUATION] rule %d (action '%s') failed for player %d: %v — continuing with next player/rule",
						rule.ID, rule.EvaluableActionID, player.ID, err)
					report.Failures = append(report.Failures, RuleFailure{
						RuleID:            rule.ID,
						EvaluableActionID: rule.EvaluableActionID,
						PlayerID:          player.ID,
						Error:             err.Error(),
					})
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ [EVALUATION] game %s: %d rule(s) evaluated, %d skipped, %d award(s), %d failure(s)",
		key, report.RulesEvaluated, report.RulesSkipped, report.Awards, len(report.Failures))
	return report, nil
}

// playerPopulation flattens the group/project structure into the team
// population (one team per project) and the individual population (every
// member of those teams).
func playerPopulation(game *models.Game) (teams []*models.Player, individuals []*models.Player) {
	for gi := range game.GameGroups {
		group := &game.GameGroups[gi]
		for pi := range group.Projects {
			team := &group.Projects[pi].TeamPlayer
			teams = append(teams, team)
			for mi := range team.Members {
				individuals = append(individuals, &team.Members[mi])
			}
		}
	}
	return teams, individuals
}

// evaluateRule runs the trigger chain for one rule/player pair: idempotent
// bucket get-or-create, accumulation-condition consumption, threshold
// crossing, and on a firing rule the 2x2 propagation plus point/level update.
// Returns the number of awards it produced.
func (s *EvaluationService) evaluateRule(tx *gorm.DB, game *models.Game, rule *models.Rule, player *models.Player, t time.Time) (int, error) {
	if _, err := s.ActionLogs.GetOrCreate(tx, rule.EvaluableActionID, player.ID, t); err != nil {
		return 0, err
	}

	assignment := &rule.AchievementAssignment
	counted, progress, err := s.ActionLogs.ConsumeForAssignment(tx, assignment.ID, rule.EvaluableActionID, player.ID)
	if err != nil {
		return 0, err
	}
	if !counted {
		return 0, nil
	}

	if progress.Accumulated < assignment.ConditionThreshold || progress.SatisfiedAt != nil {
		return 0, nil
	}

	satisfiedAt := t.UTC()
	progress.SatisfiedAt = &satisfiedAt
	if err := tx.Save(progress).Error; err != nil {
		return 0, err
	}

	return s.propagate(tx, game, assignment, player, t)
}

// propagate resolves the mismatch between the evaluated player's kind and the
// assignment's assessment level. The four cases are exhaustive:
//
//	Team evaluated, Team assessed             -> award the team
//	Team evaluated, Individual assessed       -> fan-out to every member
//	Individual evaluated, Individual assessed -> award the player
//	Individual evaluated, Team assessed       -> fan-in to the owning team only
func (s *EvaluationService) propagate(tx *gorm.DB, game *models.Game, assignment *models.AchievementAssignment, player *models.Player, t time.Time) (int, error) {
	if player.IsTeam() {
		if assignment.AssessmentLevel == models.PlayerTypeTeam {
			return 1, s.Achievements.Award(tx, game, assignment, player, t)
		}
		members, err := s.teamMembers(tx, player)
		if err != nil {
			return 0, err
		}
		for _, member := range members {
			if err := s.Achievements.Award(tx, game, assignment, member, t); err != nil {
				return 0, err
			}
		}
		return len(members), nil
	}

	if assignment.AssessmentLevel == models.PlayerTypeIndividual {
		return 1, s.Achievements.Award(tx, game, assignment, player, t)
	}
	if player.TeamID == nil {
		return 0, fmt.Errorf("player '%s' has no owning team to assess at Team level", player.Playername)
	}
	var team models.Player
	if err := tx.Where("id = ?", *player.TeamID).First(&team).Error; err != nil {
		return 0, err
	}
	return 1, s.Achievements.Award(tx, game, assignment, &team, t)
}

// teamMembers returns the current member list, loading it when the population
// walk did not already carry it.
func (s *EvaluationService) teamMembers(tx *gorm.DB, team *models.Player) ([]*models.Player, error) {
	if len(team.Members) > 0 {
		members := make([]*models.Player, 0, len(team.Members))
		for i := range team.Members {
			members = append(members, &team.Members[i])
		}
		return members, nil
	}

	var loaded []models.Player
	if err := tx.Where("team_id = ?", team.ID).Order("id ASC").Find(&loaded).Error; err != nil {
		return nil, err
	}
	members := make([]*models.Player, 0, len(loaded))
	for i := range loaded {
		members = append(members, &loaded[i])
	}
	return members, nil
}
