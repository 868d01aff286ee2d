package storage

import (
	"time"

	"gorm.io/datatypes"
)

// MissionRecord is the table behind game.RecordStore, one row per mission.
type MissionRecord struct {
	MissionName     string `gorm:"primaryKey;size:128"`
	BestScore       int
	BestPerformance string `gorm:"size:16"`
	WinCount        int
	LossCount       int
	// game.PerformanceStatistics of the last win, as JSON
	LastStatistics datatypes.JSON
	UpdatedAt      time.Time
}

func (MissionRecord) TableName() string { return "mission_records" }
