package game

import (
	"math"
)

// ScoreStatistics breaks a final score into its bonuses.
type ScoreStatistics struct {
	BaseScore          int     `json:"baseScore"`
	HitRatio           float64 `json:"hitRatio"`
	HullIntegrity      float64 `json:"hullIntegrity"`
	TeamSurvival       float64 `json:"teamSurvival"`
	HitRatioBonus      int     `json:"hitRatioBonus"`
	HullIntegrityBonus int     `json:"hullIntegrityBonus"`
	TeamSurvivalBonus  int     `json:"teamSurvivalBonus"`
	IsTeamMission      bool    `json:"isTeamMission"`
	Score              int     `json:"score"`
}

// PerformanceStatistics places a score on the performance ladder.
type PerformanceStatistics struct {
	ScoreStatistics
	Performance     string `json:"performance"`
	NextPerformance string `json:"nextPerformance,omitempty"`
	// score still needed for the next level
	NextPerformanceScore int  `json:"nextPerformanceScore,omitempty"`
	IsRecord             bool `json:"isRecord"`
}

// IsTeamMission reports whether the pilot flies with wingmen.
func (m *Mission) IsTeamMission() bool {
	return m.pilot != nil && m.pilot.Team() != nil && m.pilot.Team().InitialCount() > 1
}

// GetScoreStatistics computes the final score from its components.
func (m *Mission) GetScoreStatistics(baseScore int, hitRatio, hullIntegrity, teamSurvival float64) ScoreStatistics {
	s := ScoreStatistics{
		BaseScore:     baseScore,
		HitRatio:      hitRatio,
		HullIntegrity: hullIntegrity,
		TeamSurvival:  teamSurvival,
		IsTeamMission: m.IsTeamMission(),
	}
	settings := m.ctx.Settings
	s.HitRatioBonus = int(math.Round(float64(baseScore) * hitRatio))
	hullBonus := settings.HullIntegrityBonus
	if s.IsTeamMission {
		hullBonus = settings.HullIntegrityBonusTeam
	}
	s.HullIntegrityBonus = int(math.Round(hullIntegrity * hullBonus))
	s.Score = baseScore + s.HitRatioBonus + s.HullIntegrityBonus
	if s.IsTeamMission {
		s.TeamSurvivalBonus = int(math.Round(teamSurvival * settings.TeamSurvivalBonus))
		s.Score += s.TeamSurvivalBonus
	}
	return s
}

// UpdateReferenceScore recomputes the value of the opposition per member of
// the pilot's side. Called whenever the roster changes.
func (m *Mission) UpdateReferenceScore() {
	m.referenceScore = 0
	m.hostileTotal = 0
	if m.pilot == nil {
		return
	}
	value := 0
	teammates := 0
	for _, c := range m.spacecrafts {
		if !c.IsAlive() {
			continue
		}
		switch {
		case m.pilot.IsHostile(c):
			value += c.ScoreValue()
			m.hostileTotal++
		case c == m.pilot || m.pilot.IsFriendly(c):
			teammates++
		}
	}
	if teammates == 0 {
		teammates = 1
	}
	m.referenceScore = float64(value) / float64(teammates)
}

// RequiredScore is the score a performance level asks for in this mission.
func (m *Mission) RequiredScore(level PerformanceLevel) int {
	base := int(math.Round(m.referenceScore * level.ReferenceBaseScoreFactor))
	return m.GetScoreStatistics(base, level.ReferenceHitRatio, level.ReferenceHullIntegrity, level.ReferenceTeamSurvival).Score
}

// GetPerformanceStatistics scores the given results and finds the highest
// level reached. The lowest configured level is always reached.
func (m *Mission) GetPerformanceStatistics(baseScore int, hitRatio, hullIntegrity, teamSurvival float64) PerformanceStatistics {
	stats := PerformanceStatistics{ScoreStatistics: m.GetScoreStatistics(baseScore, hitRatio, hullIntegrity, teamSurvival)}
	levels := m.ctx.Settings.PerformanceLevels
	if len(levels) == 0 {
		return stats
	}
	reached := 0
	for i, level := range levels {
		if m.RequiredScore(level) <= stats.Score {
			reached = i
		}
	}
	stats.Performance = levels[reached].Name
	if reached+1 < len(levels) {
		next := levels[reached+1]
		stats.NextPerformance = next.Name
		stats.NextPerformanceScore = m.RequiredScore(next) - stats.Score
	}
	stats.IsRecord = stats.Score > m.record.BestScore
	return stats
}

// PilotStatistics derives the score inputs from the pilot's flight.
func (m *Mission) PilotStatistics() PerformanceStatistics {
	if m.pilot == nil {
		return m.GetPerformanceStatistics(0, 0, 0, 0)
	}
	teamSurvival := 0.0
	if team := m.pilot.Team(); team != nil && team.InitialCount() > 1 {
		alive := 0
		for _, c := range m.spacecrafts {
			if c != m.pilot && c.Team() == team && c.IsAlive() {
				alive++
			}
		}
		teamSurvival = float64(alive) / float64(team.InitialCount()-1)
	}
	return m.GetPerformanceStatistics(m.pilot.Score(), m.pilot.HitRatio(), m.pilot.HullIntegrity(), teamSurvival)
}

// RecordWin stores the outcome of a won mission.
func (m *Mission) RecordWin(stats PerformanceStatistics) error {
	m.record.WinCount++
	if stats.Score > m.record.BestScore {
		m.record.BestScore = stats.Score
		m.record.BestPerformance = stats.Performance
	}
	m.record.LastStatistics = &stats
	return m.saveRecord()
}

// RecordLoss stores a lost attempt.
func (m *Mission) RecordLoss() error {
	m.record.LossCount++
	m.record.LastStatistics = nil
	return m.saveRecord()
}

func (m *Mission) saveRecord() error {
	if m.records == nil {
		return nil
	}
	if err := m.records.SaveRecord(m.record); err != nil {
		m.log.Error("failed to save mission record", "error", err)
		return err
	}
	return nil
}
