package game

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
)

type ConditionType string

const (
	ConditionDestroyed ConditionType = "destroyed"
	ConditionCount     ConditionType = "count"
	ConditionTime      ConditionType = "time"
)

type CountRelation string

const (
	RelationBelow  CountRelation = "below"
	RelationAbove  CountRelation = "above"
	RelationEquals CountRelation = "equals"
)

type TimeWhen string

const (
	TimeBefore TimeWhen = "before"
	TimeAfter  TimeWhen = "after"
	TimeOnce   TimeWhen = "once"
	TimeRepeat TimeWhen = "repeat"
)

// SubjectGroup selects crafts by ID, squad or team; a craft matching any
// category is a subject.
type SubjectGroup struct {
	Spacecrafts []string `json:"spacecrafts,omitempty"`
	Squads      []string `json:"squads,omitempty"`
	Teams       []string `json:"teams,omitempty"`
}

func (s SubjectGroup) IsEmpty() bool {
	return len(s.Spacecrafts) == 0 && len(s.Squads) == 0 && len(s.Teams) == 0
}

func (s SubjectGroup) Has(c *Spacecraft) bool {
	if c == nil {
		return false
	}
	if slices.Contains(s.Spacecrafts, c.ID()) {
		return true
	}
	if c.SquadName() != "" && slices.Contains(s.Squads, c.SquadName()) {
		return true
	}
	return c.Team() != nil && slices.Contains(s.Teams, c.Team().ID())
}

// Describe renders the subjects for objective text.
func (s SubjectGroup) Describe(m *Mission) string {
	var parts []string
	for _, id := range s.Spacecrafts {
		if c := m.GetSpacecraftByID(id); c != nil {
			parts = append(parts, c.DisplayName())
		} else {
			parts = append(parts, id)
		}
	}
	for _, squad := range s.Squads {
		parts = append(parts, "squad "+squad)
	}
	for _, id := range s.Teams {
		if t := m.GetTeam(id); t != nil {
			parts = append(parts, t.Name())
		} else {
			parts = append(parts, id)
		}
	}
	return strings.Join(parts, ", ")
}

// ConditionDescriptor is the document form of a condition. Times in params are
// milliseconds.
type ConditionDescriptor struct {
	Type     string         `json:"type"`
	Subjects *SubjectGroup  `json:"subjects,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
}

// Condition is a predicate over a set of subject crafts, evaluated once per
// tick. An invalid condition never holds.
type Condition struct {
	Type  ConditionType
	valid bool

	subjects SubjectGroup
	resolved []*Spacecraft
	isCached bool

	// count
	count    int
	relation CountRelation

	// time, in seconds
	when       TimeWhen
	time       float64
	maxCount   int
	start      string
	startValue float64
	running    bool
	started    bool
	elapsed    float64
	repeats    int
}

// NewCondition validates a descriptor. Errors are logged and produce an
// inert condition, so a faulty entry never aborts a mission.
func NewCondition(desc ConditionDescriptor, log *slog.Logger) *Condition {
	if log == nil {
		log = discardLogger()
	}
	c := &Condition{Type: ConditionType(desc.Type)}
	if desc.Subjects != nil {
		c.subjects = *desc.Subjects
	}
	r := newParamReader(desc.Params)
	switch c.Type {
	case ConditionDestroyed:
		c.requireSubjects(r)
	case ConditionCount:
		c.requireSubjects(r)
		if n, ok := r.number("count", true); ok {
			if n < 0 || n != math.Trunc(n) {
				r.fail("\"count\" must be a non-negative integer")
			}
			c.count = int(n)
		}
		rel, _ := r.enum("relation", true, string(RelationBelow), string(RelationAbove), string(RelationEquals))
		c.relation = CountRelation(rel)
	case ConditionTime:
		when, _ := r.enum("when", true, string(TimeBefore), string(TimeAfter), string(TimeOnce), string(TimeRepeat))
		c.when = TimeWhen(when)
		if ms, ok := r.number("time", true); ok {
			if ms < 0 {
				r.fail("\"time\" cannot be negative")
			}
			c.time = ms / 1000
		}
		if c.when == TimeRepeat && c.time <= 0 {
			r.fail("repeating \"time\" must be positive")
		}
		if n, ok := r.number("maxCount", false); ok {
			c.maxCount = int(n)
		}
		c.start, _ = r.str("start", false)
		if ms, ok := r.number("startValue", false); ok {
			c.startValue = ms / 1000
		}
	default:
		r.fail("unknown condition type %q", desc.Type)
	}
	if err := r.err(); err != nil {
		log.Error("invalid condition, it will never be satisfied", "condition", desc.Type, "error", err)
		return c
	}
	c.valid = true
	c.elapsed = c.startValue
	c.running = c.start == ""
	c.started = c.running
	return c
}

func (c *Condition) requireSubjects(r *paramReader) {
	if c.subjects.IsEmpty() {
		r.fail("subjects need at least one spacecraft, squad or team")
	}
}

func (c *Condition) IsValid() bool          { return c.valid }
func (c *Condition) Subjects() SubjectGroup { return c.subjects }
func (c *Condition) StartEvent() string     { return c.start }
func (c *Condition) Elapsed() float64       { return c.elapsed }
func (c *Condition) RepeatCount() int       { return c.repeats }
func (c *Condition) IsRunning() bool        { return c.running }

// Subjects are resolved on first use and cached for the mission's lifetime.
func (c *Condition) spacecrafts(m *Mission) []*Spacecraft {
	if !c.isCached {
		c.resolved = nil
		for _, craft := range m.Spacecrafts() {
			if c.subjects.Has(craft) {
				c.resolved = append(c.resolved, craft)
			}
		}
		c.isCached = true
	}
	return c.resolved
}

// startTimer lets a gated timer run. It is only honored once.
func (c *Condition) startTimer() {
	if c.started {
		return
	}
	c.started = true
	c.running = true
}

func (c *Condition) aliveCount(m *Mission) int {
	n := 0
	for _, craft := range c.spacecrafts(m) {
		if craft.IsAlive() {
			n++
		}
	}
	return n
}

// IsSatisfied evaluates the condition for this tick, advancing timers by dt.
func (c *Condition) IsSatisfied(m *Mission, dt float64) bool {
	if !c.valid {
		return false
	}
	switch c.Type {
	case ConditionDestroyed:
		subjects := c.spacecrafts(m)
		// nothing to destroy is not a destroyed objective
		if len(subjects) == 0 {
			return false
		}
		for _, craft := range subjects {
			if craft.IsAlive() {
				return false
			}
		}
		return true
	case ConditionCount:
		return c.compareCount(c.aliveCount(m))
	case ConditionTime:
		return c.advanceTimer(dt)
	}
	return false
}

func (c *Condition) compareCount(n int) bool {
	switch c.relation {
	case RelationBelow:
		return n < c.count
	case RelationAbove:
		return n > c.count
	case RelationEquals:
		return n == c.count
	}
	return false
}

func (c *Condition) advanceTimer(dt float64) bool {
	if !c.running {
		return false
	}
	c.elapsed += dt
	switch c.when {
	case TimeBefore:
		return c.elapsed < c.time
	case TimeAfter:
		return c.elapsed > c.time
	case TimeOnce:
		if c.elapsed >= c.time {
			c.running = false
			return true
		}
	case TimeRepeat:
		result := false
		for c.elapsed >= c.time && (c.maxCount <= 0 || c.repeats < c.maxCount) {
			c.elapsed -= c.time
			c.repeats++
			result = true
		}
		if c.maxCount > 0 && c.repeats >= c.maxCount {
			c.running = false
		}
		return result
	}
	return false
}

// Progress reports how far the subjects are towards being destroyed, in [0, 1].
func (c *Condition) Progress(m *Mission) float64 {
	if !c.valid {
		return 0
	}
	switch c.Type {
	case ConditionDestroyed:
		subjects := c.spacecrafts(m)
		if len(subjects) == 0 {
			return 0
		}
		return float64(len(subjects)-c.aliveCount(m)) / float64(len(subjects))
	case ConditionCount:
		subjects := c.spacecrafts(m)
		excess := len(subjects) - c.count
		if excess <= 0 {
			return 1
		}
		return Clamp(float64(len(subjects)-c.aliveCount(m))/float64(excess), 0, 1)
	case ConditionTime:
		if c.time <= 0 {
			return 1
		}
		return Clamp(c.elapsed/c.time, 0, 1)
	}
	return 0
}

// winText describes the condition as something the pilot has to achieve.
func (c *Condition) winText(m *Mission) string {
	subjects := c.subjects.Describe(m)
	switch c.Type {
	case ConditionDestroyed:
		return "Destroy " + subjects
	case ConditionCount:
		switch {
		case c.relation == RelationEquals && c.count == 0, c.relation == RelationBelow && c.count == 1:
			return "Destroy " + subjects
		case c.relation == RelationBelow:
			return fmt.Sprintf("Destroy all but %d of %s", c.count-1, subjects)
		case c.relation == RelationEquals:
			return fmt.Sprintf("Destroy all but %d of %s", c.count, subjects)
		default:
			return fmt.Sprintf("Keep more than %d of %s alive", c.count, subjects)
		}
	case ConditionTime:
		switch c.when {
		case TimeBefore:
			return fmt.Sprintf("Complete within %s", formatSeconds(c.time))
		default:
			return fmt.Sprintf("Survive for %s", formatSeconds(c.time))
		}
	}
	return ""
}

// loseText describes the condition as something the pilot has to prevent.
func (c *Condition) loseText(m *Mission) string {
	subjects := c.subjects.Describe(m)
	switch c.Type {
	case ConditionDestroyed:
		return "Protect " + subjects
	case ConditionCount:
		switch c.relation {
		case RelationBelow:
			if c.count == 1 {
				return "Protect " + subjects
			}
			return fmt.Sprintf("Keep at least %d of %s alive", c.count, subjects)
		case RelationEquals:
			return fmt.Sprintf("Do not let exactly %d of %s remain", c.count, subjects)
		default:
			return fmt.Sprintf("Do not let more than %d of %s remain", c.count, subjects)
		}
	case ConditionTime:
		return fmt.Sprintf("Complete within %s", formatSeconds(c.time))
	}
	return ""
}

func formatSeconds(s float64) string {
	total := int(math.Round(s))
	if total >= 60 {
		return fmt.Sprintf("%d:%02d", total/60, total%60)
	}
	return fmt.Sprintf("%ds", total)
}
