package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"SpaceArmada/internal/game"
)

// ErrNotFound is returned for missions without a stored record.
var ErrNotFound = game.ErrRecordNotFound

// MemoryPath opens a private in-memory database.
const MemoryPath = "file::memory:"

// Manager stores mission records through gorm, in SQLite or Postgres.
type Manager struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

var _ game.RecordStore = (*Manager)(nil)

// dialector picks postgres for DSNs and sqlite for everything else.
func dialector(path string) gorm.Dialector {
	if strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://") || strings.HasPrefix(path, "host=") {
		return postgres.New(postgres.Config{
			DSN:                  path,
			PreferSimpleProtocol: true,
		})
	}
	if path == "" {
		path = MemoryPath
	}
	return sqlite.Open(path)
}

// Open connects to the database at path, a sqlite file or a postgres DSN,
// and migrates the schema.
func Open(path string, log zerolog.Logger) (*Manager, error) {
	dial := dialector(path)
	db, err := gorm.Open(dial, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dial.Name(), err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing sql interface: %w", err)
	}
	if dial.Name() == "sqlite" {
		// sqlite allows one writer, and every in-memory connection is its own database
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&MissionRecord{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	log.Info().Str("driver", dial.Name()).Msg("record store ready")
	return &Manager{DB: db, Logger: log}, nil
}

func (m *Manager) Close() error {
	sqlDB, err := m.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (m *Manager) LoadRecord(missionName string) (game.MissionRecord, error) {
	var row MissionRecord
	err := m.DB.Where("mission_name = ?", missionName).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return game.MissionRecord{MissionName: missionName}, ErrNotFound
	}
	if err != nil {
		m.Logger.Error().Err(err).Str("mission", missionName).Msg("loading record")
		return game.MissionRecord{MissionName: missionName}, fmt.Errorf("loading record %q: %w", missionName, err)
	}
	return toGame(row)
}

// SaveRecord inserts or replaces the record of its mission.
func (m *Manager) SaveRecord(record game.MissionRecord) error {
	row, err := fromGame(record)
	if err != nil {
		return err
	}
	err = m.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		m.Logger.Error().Err(err).Str("mission", record.MissionName).Msg("saving record")
		return fmt.Errorf("saving record %q: %w", record.MissionName, err)
	}
	m.Logger.Debug().Str("mission", record.MissionName).Int("bestScore", record.BestScore).Msg("record saved")
	return nil
}

// Records lists every stored record ordered by mission name.
func (m *Manager) Records() ([]game.MissionRecord, error) {
	var rows []MissionRecord
	if err := m.DB.Order("mission_name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	out := make([]game.MissionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toGame(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func toGame(row MissionRecord) (game.MissionRecord, error) {
	rec := game.MissionRecord{
		MissionName:     row.MissionName,
		BestScore:       row.BestScore,
		BestPerformance: row.BestPerformance,
		WinCount:        row.WinCount,
		LossCount:       row.LossCount,
	}
	if len(row.LastStatistics) > 0 && string(row.LastStatistics) != "null" {
		var stats game.PerformanceStatistics
		if err := json.Unmarshal(row.LastStatistics, &stats); err != nil {
			return rec, fmt.Errorf("decoding statistics of %q: %w", row.MissionName, err)
		}
		rec.LastStatistics = &stats
	}
	return rec, nil
}

func fromGame(rec game.MissionRecord) (MissionRecord, error) {
	row := MissionRecord{
		MissionName:     rec.MissionName,
		BestScore:       rec.BestScore,
		BestPerformance: rec.BestPerformance,
		WinCount:        rec.WinCount,
		LossCount:       rec.LossCount,
	}
	if rec.LastStatistics != nil {
		data, err := json.Marshal(rec.LastStatistics)
		if err != nil {
			return row, fmt.Errorf("encoding statistics of %q: %w", rec.MissionName, err)
		}
		row.LastStatistics = datatypes.JSON(data)
	}
	return row, nil
}
