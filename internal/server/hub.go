package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"SpaceArmada/internal/battle"
	"SpaceArmada/internal/game"
)

var ErrBattleNotFound = errors.New("battle not found")

const (
	// replay window kept per battle
	historySeconds = 30
	historyHz      = 10
)

// Dependencies are what the hub needs to set battles up.
type Dependencies struct {
	Settings game.Settings
	Records  game.RecordStore
	Log      *slog.Logger
	// tick rate of every battle
	Hz float64
	// optional, builds the metrics recorder of a battle
	NewMetrics func(battleID string) (game.Metrics, error)
}

// Hub runs battles, each on its own goroutine.
type Hub struct {
	mu      sync.RWMutex
	battles map[string]*LiveBattle
	deps    Dependencies
	log     *slog.Logger
	wg      sync.WaitGroup
}

// LiveBattle is a battle running on the hub.
type LiveBattle struct {
	ID      string
	Name    string
	Created time.Time
	Battle  *battle.Battle

	cancel     context.CancelFunc
	done       chan struct{}
	result     battle.Result
	finishedAt time.Time

	history     *battle.History
	sampleEvery int
	steps       int

	subsMu sync.Mutex
	subs   map[chan battle.Snapshot]struct{}
}

// BattleInfo is the listing entry of a battle.
type BattleInfo struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Created    time.Time      `json:"created"`
	Finished   bool           `json:"finished"`
	FinishedAt *time.Time     `json:"finishedAt,omitempty"`
	Elapsed    float64        `json:"elapsed"`
	Result     *battle.Result `json:"result,omitempty"`
}

func NewHub(deps Dependencies) *Hub {
	if deps.Log == nil {
		deps.Log = slog.New(slog.DiscardHandler)
	}
	if deps.Hz <= 0 {
		deps.Hz = game.SimHz
	}
	deps.Settings = deps.Settings.WithDefaults()
	return &Hub{
		battles: map[string]*LiveBattle{},
		deps:    deps,
		log:     deps.Log.With("component", "hub"),
	}
}

// CreateBattle loads the mission and starts stepping it in real time.
func (h *Hub) CreateBattle(name string, doc []byte, overrides SettingsOverrides) (*LiveBattle, error) {
	id := uuid.NewString()
	if name == "" {
		name = "battle-" + id[:8]
	}
	opts := battle.Options{
		Name:     name,
		Mission:  doc,
		Settings: overrides.apply(h.deps.Settings),
		Records:  h.deps.Records,
		Log:      h.deps.Log,
	}
	if overrides.Seed != nil {
		opts.Seed = *overrides.Seed
	}
	if h.deps.NewMetrics != nil {
		metrics, err := h.deps.NewMetrics(id)
		if err != nil {
			h.log.Warn("metrics disabled for battle", "battle", id, "error", err)
		} else {
			opts.Metrics = metrics
		}
	}
	b, err := battle.New(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	lb := &LiveBattle{
		ID:      id,
		Name:    name,
		Created: time.Now(),
		Battle:  b,
		cancel:  cancel,
		done:    make(chan struct{}),
		subs:    map[chan battle.Snapshot]struct{}{},

		history:     battle.NewHistory(historySeconds, historyHz),
		sampleEvery: max(int(h.deps.Hz/historyHz), 1),
	}
	h.mu.Lock()
	h.battles[id] = lb
	h.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer close(lb.done)
		lb.result = b.RunRealtime(ctx, h.deps.Hz, lb.afterStep)
		lb.broadcast(lb.Battle.Snapshot())
		lb.finishedAt = time.Now()
		h.log.Info("battle ended", "battle", id, "name", name, "won", lb.result.Won, "lost", lb.result.Lost)
	}()
	h.log.Info("battle started", "battle", id, "name", name)
	return lb, nil
}

func (h *Hub) Get(id string) (*LiveBattle, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	lb, ok := h.battles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBattleNotFound, id)
	}
	return lb, nil
}

// List returns every battle, oldest first.
func (h *Hub) List() []BattleInfo {
	h.mu.RLock()
	out := make([]BattleInfo, 0, len(h.battles))
	for _, lb := range h.battles {
		out = append(out, lb.Info())
	}
	h.mu.RUnlock()
	slices.SortFunc(out, func(a, b BattleInfo) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Stop ends a battle and waits for it to finish.
func (h *Hub) Stop(id string) (battle.Result, error) {
	lb, err := h.Get(id)
	if err != nil {
		return battle.Result{}, err
	}
	lb.cancel()
	<-lb.done
	return lb.result, nil
}

// CleanupFinished forgets battles that ended more than maxAge ago.
func (h *Hub) CleanupFinished(maxAge time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	removed := 0
	for id, lb := range h.battles {
		if !lb.Finished() || time.Since(lb.finishedAt) < maxAge {
			continue
		}
		lb.Battle.Destroy()
		delete(h.battles, id)
		removed++
	}
	return removed
}

// Shutdown stops every battle.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	for _, lb := range h.battles {
		lb.cancel()
	}
	h.mu.RUnlock()
	h.wg.Wait()
}

func (lb *LiveBattle) Done() <-chan struct{} { return lb.done }

func (lb *LiveBattle) Finished() bool {
	select {
	case <-lb.done:
		return true
	default:
		return false
	}
}

// Result is only meaningful once Done is closed.
func (lb *LiveBattle) Result() battle.Result { return lb.result }

// FinishedAt is the zero time until Done is closed.
func (lb *LiveBattle) FinishedAt() time.Time {
	if !lb.Finished() {
		return time.Time{}
	}
	return lb.finishedAt
}

func (lb *LiveBattle) Info() BattleInfo {
	info := BattleInfo{ID: lb.ID, Name: lb.Name, Created: lb.Created, Finished: lb.Finished()}
	if info.Finished {
		res, at := lb.result, lb.finishedAt
		info.Result = &res
		info.FinishedAt = &at
		info.Elapsed = res.Elapsed
	} else {
		info.Elapsed = lb.Battle.Snapshot().Elapsed
	}
	return info
}

// Subscribe returns a channel receiving the latest snapshot after each step.
// Slow readers skip snapshots.
func (lb *LiveBattle) Subscribe() (<-chan battle.Snapshot, func()) {
	ch := make(chan battle.Snapshot, 1)
	lb.subsMu.Lock()
	lb.subs[ch] = struct{}{}
	lb.subsMu.Unlock()
	return ch, func() {
		lb.subsMu.Lock()
		delete(lb.subs, ch)
		lb.subsMu.Unlock()
	}
}

// History is the replay buffer, sampled at historyHz.
func (lb *LiveBattle) History() *battle.History { return lb.history }

// afterStep runs on the battle goroutine after every step.
func (lb *LiveBattle) afterStep() {
	lb.steps++
	sample := lb.steps%lb.sampleEvery == 0
	lb.subsMu.Lock()
	listening := len(lb.subs) > 0
	lb.subsMu.Unlock()
	if !sample && !listening {
		return
	}
	snap := lb.Battle.Snapshot()
	if sample {
		lb.history.Push(snap)
	}
	lb.broadcast(snap)
}

func (lb *LiveBattle) broadcast(snap battle.Snapshot) {
	lb.subsMu.Lock()
	defer lb.subsMu.Unlock()
	for ch := range lb.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
