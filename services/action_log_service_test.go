package services

import (
	"testing"
	"time"

	"gamification-engine/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.EvaluableAction{ID: "commit", Name: "commit"}).Error)
	player := models.Player{Playername: "alice", Type: models.PlayerTypeIndividual}
	require.NoError(t, db.Create(&player).Error)

	svc := NewActionLogService(db)
	now := time.Now()

	first, err := svc.GetOrCreate(db, "commit", player.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count, "creation records the occurrence")

	second, err := svc.GetOrCreate(db, "commit", player.ID, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same (action, player, day) key yields the same entry")
	assert.Equal(t, 1, second.Count, "re-invocation never double-counts")

	var total int64
	require.NoError(t, db.Model(&models.ActionLog{}).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestGetOrCreateSeparatesDayBuckets(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.EvaluableAction{ID: "commit", Name: "commit"}).Error)
	player := models.Player{Playername: "alice", Type: models.PlayerTypeIndividual}
	require.NoError(t, db.Create(&player).Error)

	svc := NewActionLogService(db)
	today := time.Now()
	yesterday := today.AddDate(0, 0, -1)

	first, err := svc.GetOrCreate(db, "commit", player.ID, yesterday)
	require.NoError(t, err)
	second, err := svc.GetOrCreate(db, "commit", player.ID, today)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestGetOrCreateRejectsUndefinedAction(t *testing.T) {
	db := newTestDB(t)
	player := models.Player{Playername: "alice", Type: models.PlayerTypeIndividual}
	require.NoError(t, db.Create(&player).Error)

	svc := NewActionLogService(db)
	_, err := svc.GetOrCreate(db, "ghost-action", player.ID, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost-action")
}

func TestLogIncrementsBucketCount(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.EvaluableAction{ID: "commit", Name: "commit"}).Error)
	player := models.Player{Playername: "alice", Type: models.PlayerTypeIndividual}
	require.NoError(t, db.Create(&player).Error)

	svc := NewActionLogService(db)
	now := time.Now()

	entry, err := svc.Log("commit", "alice", now)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Count)

	entry, err = svc.Log("commit", "alice", now)
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Count)

	var total int64
	require.NoError(t, db.Model(&models.ActionLog{}).Count(&total).Error)
	assert.EqualValues(t, 1, total, "same-day occurrences share one bucket")
}

func TestLogUnknownPlayerOrAction(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.EvaluableAction{ID: "commit", Name: "commit"}).Error)

	svc := NewActionLogService(db)
	_, err := svc.Log("commit", "ghost", time.Now())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	player := models.Player{Playername: "alice", Type: models.PlayerTypeIndividual}
	require.NoError(t, db.Create(&player).Error)
	_, err = svc.Log("ghost-action", "alice", time.Now())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

// Buckets accumulated on days between evaluation passes are picked up by the
// next consumption, and already-consumed buckets never count twice.
func TestConsumeForAssignmentAccumulatesAcrossBuckets(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.EvaluableAction{ID: "commit", Name: "commit"}).Error)
	player := models.Player{Playername: "alice", Type: models.PlayerTypeIndividual}
	require.NoError(t, db.Create(&player).Error)

	assignment := models.AchievementAssignment{AssessmentLevel: models.PlayerTypeIndividual, ConditionThreshold: 3}
	require.NoError(t, db.Create(&assignment).Error)

	today := models.DateOf(time.Now())
	for offset, count := range map[int]int{-2: 1, -1: 2} {
		require.NoError(t, db.Create(&models.ActionLog{
			ID:                uuid.NewString(),
			EvaluableActionID: "commit",
			PlayerID:          player.ID,
			Date:              today.AddDate(0, 0, offset),
			Count:             count,
		}).Error)
	}

	svc := NewActionLogService(db)
	counted, progress, err := svc.ConsumeForAssignment(db, assignment.ID, "commit", player.ID)
	require.NoError(t, err)
	assert.True(t, counted)
	assert.Equal(t, 3, progress.Accumulated)

	counted, progress, err = svc.ConsumeForAssignment(db, assignment.ID, "commit", player.ID)
	require.NoError(t, err)
	assert.False(t, counted, "no new buckets means nothing counted")
	assert.Equal(t, 3, progress.Accumulated)
}
