package services

import (
	"testing"
	"time"

	"gamification-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAchievementValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAchievementService(db)

	_, err := svc.CreateAchievement("", models.AchievementCategoryPoints, "")
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))

	_, err = svc.CreateAchievement("Gold Star", "Medal", "")
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))

	achievement, err := svc.CreateAchievement("Gold Star", models.AchievementCategoryBadge, "https://assets/icons/star.svg")
	require.NoError(t, err)
	assert.Equal(t, "https://assets/icons/star.svg", achievement.IconURL)
}

func TestPlayerAchievements(t *testing.T) {
	db := newTestDB(t)
	game := seedPlayingGame(t, db, 10, 50, 100)
	_, members := seedTeam(t, db, game, "team-alpha", "alice")

	seedRule(t, db, game, ruleSpec{
		actionID:        "commit",
		evaluationLevel: models.PlayerTypeIndividual,
		assessmentLevel: models.PlayerTypeIndividual,
		units:           15,
		defineAction:    true,
	})

	evalSvc := newEvaluationService(db)
	_, err := evalSvc.EvaluateGame("AMEP", 2024, "Quadrimester1")
	require.NoError(t, err)

	svc := NewAchievementService(db)
	logged, err := svc.PlayerAchievements("alice")
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, members[0].ID, logged[0].PlayerID)
	assert.Equal(t, models.DateOf(time.Now()), models.DateOf(logged[0].Date))
	assert.Equal(t, "achievement-commit", logged[0].AchievementAssignment.Achievement.Name)

	_, err = svc.PlayerAchievements("ghost")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestGetProgression(t *testing.T) {
	db := newTestDB(t)
	game := seedPlayingGame(t, db, 10, 50, 100)
	team, _ := seedTeam(t, db, game, "team-alpha", "alice")

	seedRule(t, db, game, ruleSpec{
		actionID:        "commit",
		evaluationLevel: models.PlayerTypeIndividual,
		assessmentLevel: models.PlayerTypeIndividual,
		units:           15,
		defineAction:    true,
	})

	evalSvc := newEvaluationService(db)
	_, err := evalSvc.EvaluateGame("AMEP", 2024, "Quadrimester1")
	require.NoError(t, err)

	svc := NewPlayerService(db)
	progression, err := svc.GetProgression("alice")
	require.NoError(t, err)
	assert.Equal(t, 15, progression.Points)
	assert.Equal(t, 1, progression.Level)
	assert.Equal(t, team.Playername, progression.Team)
	assert.Len(t, progression.Achievements, 1)

	_, err = svc.GetProgression("ghost")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
