package game

import (
	"errors"
	"sync"
)

var ErrRecordNotFound = errors.New("mission record not found")

// MissionRecord is the persistent per-mission history of the player.
type MissionRecord struct {
	MissionName     string                 `json:"missionName"`
	BestScore       int                    `json:"bestScore"`
	BestPerformance string                 `json:"bestPerformance,omitempty"`
	WinCount        int                    `json:"winCount"`
	LossCount       int                    `json:"lossCount"`
	LastStatistics  *PerformanceStatistics `json:"lastStatistics,omitempty"`
}

// RecordStore persists mission records keyed by mission name. Loading a
// mission that was never played returns ErrRecordNotFound.
type RecordStore interface {
	LoadRecord(missionName string) (MissionRecord, error)
	SaveRecord(record MissionRecord) error
}

// MemoryRecordStore keeps records in process memory.
type MemoryRecordStore struct {
	mu      sync.Mutex
	records map[string]MissionRecord
}

var _ RecordStore = (*MemoryRecordStore)(nil)

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: map[string]MissionRecord{}}
}

func (s *MemoryRecordStore) LoadRecord(missionName string) (MissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[missionName]
	if !ok {
		return MissionRecord{MissionName: missionName}, ErrRecordNotFound
	}
	return rec, nil
}

func (s *MemoryRecordStore) SaveRecord(record MissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.MissionName] = record
	return nil
}
