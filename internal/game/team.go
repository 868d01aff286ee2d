package game

// Squad is a named group of crafts within a team, kept in join order.
// Destroyed members stay listed.
type Squad struct {
	Name        string
	Spacecrafts []*Spacecraft
}

// Team groups crafts for ally/enemy decisions.
type Team struct {
	id           string
	name         string
	color        *[4]float64
	initialCount int
	squads       []*Squad
}

func NewTeam(id, name string, color *[4]float64) *Team {
	if name == "" {
		name = id
	}
	return &Team{id: id, name: name, color: color}
}

func (t *Team) ID() string          { return t.id }
func (t *Team) Name() string        { return t.name }
func (t *Team) Color() *[4]float64  { return t.color }
func (t *Team) InitialCount() int   { return t.initialCount }
func (t *Team) Squads() []*Squad    { return t.squads }

// Squad returns the named squad, or nil.
func (t *Team) Squad(name string) *Squad {
	for _, s := range t.squads {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// AddSpacecraft makes the craft a member. Teams only grow: there is no removal,
// and liveness is derived from the mission's roster.
func (t *Team) AddSpacecraft(c *Spacecraft) {
	c.setTeam(t)
	t.initialCount++
	if c.SquadName() == "" {
		return
	}
	squad := t.Squad(c.SquadName())
	if squad == nil {
		squad = &Squad{Name: c.SquadName()}
		t.squads = append(t.squads, squad)
	}
	squad.Spacecrafts = append(squad.Spacecrafts, c)
}
