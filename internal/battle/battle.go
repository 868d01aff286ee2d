package battle

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"SpaceArmada/internal/ai"
	"SpaceArmada/internal/game"
)

// Options describe a battle to set up.
type Options struct {
	Name     string
	Mission  []byte // mission JSON document
	Settings game.Settings
	Records  game.RecordStore
	Log      *slog.Logger
	Metrics  game.Metrics
	// random seed, 0 seeds from the clock
	Seed int64
}

// Result is the outcome of a finished battle.
type Result struct {
	Won        bool                        `json:"won"`
	Lost       bool                        `json:"lost"`
	Elapsed    float64                     `json:"elapsed"`
	Statistics *game.PerformanceStatistics `json:"statistics,omitempty"`
}

// Battle ties a mission to the AI pilots flying in it. All methods are safe
// to call from several goroutines; the simulation itself runs on whichever
// goroutine calls Step.
type Battle struct {
	mu sync.Mutex

	Ctx     *game.Context
	Mission *game.Mission
	AI      *ai.Context

	log      *slog.Logger
	scene    game.Scene
	finished bool
	result   Result
}

func New(opts Options) (*Battle, error) {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	ctx := game.NewContext(opts.Settings.WithDefaults(), log)
	if opts.Seed != 0 {
		ctx.Rand = rand.New(rand.NewSource(opts.Seed))
	}
	if opts.Metrics != nil {
		ctx.Metrics = opts.Metrics
	}

	mission, err := game.LoadMission(opts.Name, opts.Mission, ctx, opts.Records)
	if err != nil {
		return nil, fmt.Errorf("battle %q: %w", opts.Name, err)
	}
	b := &Battle{
		Ctx:     ctx,
		Mission: mission,
		AI:      ai.NewContext(mission, log),
		log:     log.With("battle", opts.Name),
	}
	b.AI.AddAllFromMission()
	ctx.OnSceneMoved(b.AI.HandleSceneMoved)
	b.scene = NewPilotScene(mission)
	return b, nil
}

// FollowScene replaces the scene that drives re-centering. nil disables it.
func (b *Battle) FollowScene(scene game.Scene) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scene = scene
}

// Step advances the mission by dt and lets the AI react to the new state.
// It reports whether the mission is decided.
func (b *Battle) Step(dt float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return true
	}
	b.Mission.Tick(dt, b.scene)
	b.AI.Control(dt)
	return b.Mission.IsOver()
}

// Finish records the outcome once and returns it. A battle stopped before
// it was decided is neither won nor lost and is not recorded.
func (b *Battle) Finish() Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return b.result
	}
	b.finished = true
	m := b.Mission
	b.result = Result{Elapsed: m.Elapsed()}
	switch {
	case m.IsLost():
		b.result.Lost = true
		if err := m.RecordLoss(); err != nil {
			b.log.Error("failed to record loss", "error", err)
		}
	case m.IsWon():
		b.result.Won = true
		stats := m.PilotStatistics()
		b.result.Statistics = &stats
		if err := m.RecordWin(stats); err != nil {
			b.log.Error("failed to record win", "error", err)
		}
	}
	b.log.Info("battle finished", "won", b.result.Won, "lost", b.result.Lost, "elapsed", b.result.Elapsed)
	return b.result
}

// Run steps the battle at a fixed dt until it is decided, ctx is done or
// maxDuration seconds of battle time have passed (0 means no limit), then
// finishes it.
func (b *Battle) Run(ctx context.Context, dt, maxDuration float64) Result {
	for {
		if ctx.Err() != nil {
			break
		}
		if b.Step(dt) {
			break
		}
		if maxDuration > 0 && b.Mission.Elapsed() >= maxDuration {
			b.log.Warn("battle timed out", "after", maxDuration)
			break
		}
	}
	return b.Finish()
}

// RunRealtime steps the battle on a ticker at hz until it is decided or ctx
// is done. onStep runs after every step, outside the battle lock.
func (b *Battle) RunRealtime(ctx context.Context, hz float64, onStep func()) Result {
	dt := 1 / hz
	ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return b.Finish()
		case <-ticker.C:
			over := b.Step(dt)
			if onStep != nil {
				onStep()
			}
			if over {
				return b.Finish()
			}
		}
	}
}

// Destroy releases the mission. The battle must not be stepped afterwards.
func (b *Battle) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finished = true
	b.AI.ClearAIs()
	b.Mission.Destroy()
}
