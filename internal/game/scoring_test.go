package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreStatisticsSolo(t *testing.T) {
	m := loadTestMission(t, duelMission)
	require.False(t, m.IsTeamMission())

	s := m.GetScoreStatistics(1000, 0.5, 1, 0)
	assert.Equal(t, 500, s.HitRatioBonus)
	assert.Equal(t, 200, s.HullIntegrityBonus)
	assert.Zero(t, s.TeamSurvivalBonus)
	assert.Equal(t, 1700, s.Score)
}

func TestScoreStatisticsTeam(t *testing.T) {
	m := loadTestMission(t, escortMission)
	require.True(t, m.IsTeamMission())

	s := m.GetScoreStatistics(1000, 0.5, 1, 1)
	assert.Equal(t, 100, s.HullIntegrityBonus)
	assert.Equal(t, 150, s.TeamSurvivalBonus)
	assert.Equal(t, 1750, s.Score)
}

func TestReferenceScore(t *testing.T) {
	assert.Equal(t, 160.0, loadTestMission(t, duelMission).ReferenceScore())
	// one raider against the pilot and the freighter
	assert.Equal(t, 80.0, loadTestMission(t, escortMission).ReferenceScore())
	assert.Zero(t, loadTestMission(t, `{"spacecrafts": [{"class": "viper"}]}`).ReferenceScore())
}

func TestPerformanceLevels(t *testing.T) {
	m := loadTestMission(t, duelMission)

	var required []int
	for _, level := range m.Context().Settings.PerformanceLevels {
		required = append(required, m.RequiredScore(level))
	}
	assert.Equal(t, []int{0, 156, 266, 364, 448, 564}, required)

	low := m.GetPerformanceStatistics(0, 0, 0, 0)
	assert.Equal(t, "f", low.Performance)
	assert.Equal(t, "d", low.NextPerformance)
	assert.Equal(t, 156, low.NextPerformanceScore)

	mid := m.GetPerformanceStatistics(400, 0, 0, 0)
	assert.Equal(t, "b", mid.Performance)
	assert.Equal(t, 48, mid.NextPerformanceScore)

	top := m.GetPerformanceStatistics(1000, 0.5, 1, 0)
	assert.Equal(t, "s", top.Performance)
	assert.Empty(t, top.NextPerformance)
	assert.Zero(t, top.NextPerformanceScore)
	assert.True(t, top.IsRecord)
}

func TestRecordWinAndLoss(t *testing.T) {
	store := NewMemoryRecordStore()
	m, err := LoadMission("duel", []byte(duelMission), newTestContext(), store)
	require.NoError(t, err)

	stats := m.GetPerformanceStatistics(400, 0, 0, 0)
	require.NoError(t, m.RecordWin(stats))
	require.NoError(t, m.RecordLoss())

	rec, err := store.LoadRecord("duel")
	require.NoError(t, err)
	assert.Equal(t, 400, rec.BestScore)
	assert.Equal(t, "b", rec.BestPerformance)
	assert.Equal(t, 1, rec.WinCount)
	assert.Equal(t, 1, rec.LossCount)
	assert.Nil(t, rec.LastStatistics)

	again, err := LoadMission("duel", []byte(duelMission), newTestContext(), store)
	require.NoError(t, err)
	assert.False(t, again.GetPerformanceStatistics(300, 0, 0, 0).IsRecord)
	assert.True(t, again.GetPerformanceStatistics(401, 0, 0, 0).IsRecord)
}

func TestPilotStatistics(t *testing.T) {
	m := loadTestMission(t, escortMission)
	kill(m.GetSpacecraftByID("freighter"))

	stats := m.PilotStatistics()
	assert.True(t, stats.IsTeamMission)
	assert.Zero(t, stats.TeamSurvival)
	assert.Equal(t, 1.0, stats.HullIntegrity)
	assert.Equal(t, 100, stats.Score)
}
