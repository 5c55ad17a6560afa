package services

import (
	"fmt"
	"testing"
	"time"

	"gamification-engine/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Subject{},
		&models.Game{},
		&models.GameGroup{},
		&models.Project{},
		&models.Player{},
		&models.EvaluableAction{},
		&models.ActionLog{},
		&models.Achievement{},
		&models.AchievementAssignment{},
		&models.AssignmentProgress{},
		&models.AssignmentConsumption{},
		&models.LoggedAchievement{},
		&models.Rule{},
	))
	return db
}

func seedSubject(t *testing.T, db *gorm.DB, acronym string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Subject{Acronym: acronym, Name: acronym}).Error)
}

// seedPlayingGame creates a subject and a game whose window contains today.
func seedPlayingGame(t *testing.T, db *gorm.DB, p1, p2, p3 float64) *models.Game {
	t.Helper()
	seedSubject(t, db, "AMEP")
	today := models.DateOf(time.Now())
	game := models.Game{
		SubjectAcronym:             "AMEP",
		Course:                     2024,
		Period:                     models.PeriodQuadrimester1,
		StartDate:                  today.AddDate(0, 0, -7),
		EndDate:                    today.AddDate(0, 0, 7),
		FirstLevelPolicyParameter:  p1,
		SecondLevelPolicyParameter: p2,
		ThirdLevelPolicyParameter:  p3,
	}
	require.NoError(t, db.Create(&game).Error)
	return &game
}

// seedTeam wires a group, a project, a team player, and its individual
// members under the game.
func seedTeam(t *testing.T, db *gorm.DB, game *models.Game, teamName string, memberNames ...string) (*models.Player, []*models.Player) {
	t.Helper()
	team := models.Player{Playername: teamName, Type: models.PlayerTypeTeam}
	require.NoError(t, db.Create(&team).Error)

	members := make([]*models.Player, 0, len(memberNames))
	for _, name := range memberNames {
		member := models.Player{Playername: name, Type: models.PlayerTypeIndividual, TeamID: &team.ID}
		require.NoError(t, db.Create(&member).Error)
		members = append(members, &member)
	}

	group := models.GameGroup{
		Name:               "group-" + teamName,
		GameSubjectAcronym: game.SubjectAcronym,
		GameCourse:         game.Course,
		GamePeriod:         game.Period,
	}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&models.Project{
		Name:         "project-" + teamName,
		GameGroupID:  group.ID,
		TeamPlayerID: team.ID,
	}).Error)

	return &team, members
}

type ruleSpec struct {
	actionID        string
	evaluationLevel string
	assessmentLevel string
	threshold       int
	units           int
	category        string
	defineAction    bool
}

// seedRule creates the evaluable action, achievement, assignment, and rule
// chain for the game, valid over the game's whole window.
func seedRule(t *testing.T, db *gorm.DB, game *models.Game, spec ruleSpec) *models.Rule {
	t.Helper()
	if spec.category == "" {
		spec.category = models.AchievementCategoryPoints
	}
	if spec.threshold == 0 {
		spec.threshold = 1
	}
	if spec.defineAction {
		require.NoError(t, db.Create(&models.EvaluableAction{ID: spec.actionID, Name: spec.actionID}).Error)
	}

	achievement := models.Achievement{Name: "achievement-" + spec.actionID, Category: spec.category}
	require.NoError(t, db.Create(&achievement).Error)

	assignment := models.AchievementAssignment{
		AchievementID:      achievement.ID,
		AssessmentLevel:    spec.assessmentLevel,
		ConditionThreshold: spec.threshold,
		AchievementUnits:   spec.units,
	}
	require.NoError(t, db.Create(&assignment).Error)

	rule := models.Rule{
		Name:                    fmt.Sprintf("rule-%s-%s", spec.actionID, spec.evaluationLevel),
		GameSubjectAcronym:      game.SubjectAcronym,
		GameCourse:              game.Course,
		GamePeriod:              game.Period,
		EvaluableActionID:       spec.actionID,
		EvaluationLevel:         spec.evaluationLevel,
		StartDate:               game.StartDate,
		EndDate:                 game.EndDate,
		AchievementAssignmentID: assignment.ID,
	}
	require.NoError(t, db.Create(&rule).Error)
	return &rule
}

func reloadPlayer(t *testing.T, db *gorm.DB, id uint) *models.Player {
	t.Helper()
	var player models.Player
	require.NoError(t, db.Where("id = ?", id).First(&player).Error)
	return &player
}

func countAchievements(t *testing.T, db *gorm.DB, playerID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.LoggedAchievement{}).Where("player_id = ?", playerID).Count(&n).Error)
	return n
}

func newEvaluationService(db *gorm.DB) *EvaluationService {
	return NewEvaluationService(db, NewActionLogService(db), NewAchievementService(db))
}
