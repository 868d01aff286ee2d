package game

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SpacecraftEvent identifies a notification a craft raises for its listeners.
type SpacecraftEvent int

const (
	EventBeingHit         SpacecraftEvent = iota // this craft was hit
	EventTargetHit                               // this craft hit its target
	EventAnySpacecraftHit                        // this craft hit any craft
	EventTargetFired                             // our target fired
	EventFired                                   // this craft fired
	EventDestructed
	EventJumpedIn
	EventJumpedOut
)

// HitInfo accompanies hit and fire notifications.
type HitInfo struct {
	Source   *Spacecraft
	Position Vec3
	Damage   float64
}

type EventHandler func(HitInfo)

// Weapon is a mounted gun with its own cooldown.
type Weapon struct {
	Class    WeaponClass
	cooldown float64
}

func (w *Weapon) Ready() bool { return w.cooldown <= 0 }

// SpacecraftOptions describe a craft to create.
type SpacecraftOptions struct {
	ID          string
	Name        string
	Class       string
	Equipment   string
	Position    Vec3
	Orientation Basis
	Squad       string // "alpha 1" = squad alpha, index 1
	Piloted     bool
	AI          string // overrides the class AI type, "none" disables
	Away        bool
	Body        PhysicalBody
}

// Spacecraft is the simulated state of one ship or fighter.
type Spacecraft struct {
	ctx *Context

	id         string
	name       string
	class      *SpacecraftClass
	team       *Team
	squadName  string
	squadIndex int
	piloted    bool
	aiType     string
	body       PhysicalBody

	hitpoints      float64
	away           bool
	destroyed      bool
	timeSinceDeath float64
	hitboxVisible  bool

	speedTarget    float64
	strafeTarget   float64
	liftTarget     float64
	yawIntensity   float64
	pitchIntensity float64
	rollIntensity  float64

	weapons []*Weapon
	target  *Spacecraft
	// crafts whose current target is this one
	targetedBy map[*Spacecraft]struct{}

	shotsFired int
	hits       int
	score      int
	kills      int

	handlers       map[SpacecraftEvent][]EventHandler
	commandHandler func(SpacecraftCommand)
}

func NewSpacecraft(opts SpacecraftOptions, ctx *Context) (*Spacecraft, error) {
	class, err := GetClass(opts.Class)
	if err != nil {
		return nil, err
	}
	weapons, err := class.EquipmentProfile(opts.Equipment)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = NewContext(DefaultSettings(), nil)
	}
	orientation := opts.Orientation
	if orientation == (Basis{}) {
		orientation = IdentityBasis()
	}
	body := opts.Body
	if body == nil {
		body = NewKinematicBody(opts.Position, orientation, class.Size)
	}
	aiType := class.AIType
	if opts.AI != "" {
		aiType = opts.AI
	}
	if opts.Piloted || aiType == "none" {
		aiType = ""
	}
	c := &Spacecraft{
		ctx:        ctx,
		id:         opts.ID,
		name:       opts.Name,
		class:      class,
		piloted:    opts.Piloted,
		aiType:     aiType,
		body:       body,
		hitpoints:  class.Hitpoints,
		away:       opts.Away,
		targetedBy: map[*Spacecraft]struct{}{},
		handlers:   map[SpacecraftEvent][]EventHandler{},
	}
	c.squadName, c.squadIndex = ParseSquad(opts.Squad)
	for _, w := range weapons {
		c.weapons = append(c.weapons, &Weapon{Class: w})
	}
	return c, nil
}

// ParseSquad splits "alpha 2" into ("alpha", 2). A missing index is 0.
func ParseSquad(squad string) (string, int) {
	squad = strings.TrimSpace(squad)
	if squad == "" {
		return "", 0
	}
	fields := strings.Fields(squad)
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
			return strings.Join(fields[:len(fields)-1], " "), n
		}
	}
	return squad, 0
}

func (c *Spacecraft) String() string {
	return fmt.Sprintf("%s(%s)", c.DisplayName(), c.class.Name)
}

func (c *Spacecraft) ID() string               { return c.id }
func (c *Spacecraft) Class() *SpacecraftClass  { return c.class }
func (c *Spacecraft) Team() *Team              { return c.team }
func (c *Spacecraft) SquadName() string        { return c.squadName }
func (c *Spacecraft) SquadIndex() int          { return c.squadIndex }
func (c *Spacecraft) IsPiloted() bool          { return c.piloted }
func (c *Spacecraft) AIType() string           { return c.aiType }
func (c *Spacecraft) Body() PhysicalBody       { return c.body }
func (c *Spacecraft) Weapons() []*Weapon       { return c.weapons }
func (c *Spacecraft) Target() *Spacecraft      { return c.target }
func (c *Spacecraft) Hitpoints() float64       { return c.hitpoints }
func (c *Spacecraft) ShotsFired() int          { return c.shotsFired }
func (c *Spacecraft) Hits() int                { return c.hits }
func (c *Spacecraft) Score() int               { return c.score }
func (c *Spacecraft) Kills() int               { return c.kills }
func (c *Spacecraft) ScoreValue() int          { return c.class.ScoreValue }
func (c *Spacecraft) IsAway() bool             { return c.away }
func (c *Spacecraft) HitboxVisible() bool      { return c.hitboxVisible }
func (c *Spacecraft) SetHitboxVisible(v bool)  { c.hitboxVisible = v }
func (c *Spacecraft) Position() Vec3           { return c.body.Position() }
func (c *Spacecraft) PositionVector() Vec3     { return c.body.Position() }
func (c *Spacecraft) Orientation() Basis       { return c.body.Orientation() }
func (c *Spacecraft) Velocity() Vec3           { return c.body.Velocity() }
func (c *Spacecraft) Size() float64            { return c.body.Size() }
func (c *Spacecraft) AngularRates() Rates      { return c.body.AngularRates() }
func (c *Spacecraft) MaxSpeed() float64        { return c.class.MaxSpeed }
func (c *Spacecraft) MaxStrafeSpeed() float64  { return c.class.MaxStrafeSpeed }
func (c *Spacecraft) Acceleration() float64    { return c.class.Acceleration }

func (c *Spacecraft) MaxAngularVelocity() float64  { return c.class.MaxAngularVelocity }
func (c *Spacecraft) AngularAcceleration() float64 { return c.class.AngularAcceleration }

// DisplayName is the given name, the squad call sign or the class name.
func (c *Spacecraft) DisplayName() string {
	switch {
	case c.name != "":
		return c.name
	case c.squadName != "" && c.squadIndex > 0:
		return fmt.Sprintf("%s %d", c.squadName, c.squadIndex)
	case c.squadName != "":
		return c.squadName
	}
	return c.class.DisplayName
}

func (c *Spacecraft) setTeam(t *Team) { c.team = t }

func (c *Spacecraft) IsAlive() bool {
	return !c.destroyed && c.hitpoints > 0
}

// CanBeReused reports that the craft is gone: destroyed outright or dead for
// longer than the death grace period.
func (c *Spacecraft) CanBeReused() bool {
	if c.destroyed {
		return true
	}
	return c.hitpoints <= 0 && c.timeSinceDeath >= c.ctx.Settings.DeathGracePeriod
}

// HullIntegrity is the remaining fraction of hitpoints.
func (c *Spacecraft) HullIntegrity() float64 {
	return Clamp(c.hitpoints/c.class.Hitpoints, 0, 1)
}

// HitRatio is hits on hostiles per shot fired.
func (c *Spacecraft) HitRatio() float64 {
	if c.shotsFired == 0 {
		return 0
	}
	return float64(c.hits) / float64(c.shotsFired)
}

// IsHostile reports whether two crafts fight each other: they are on
// different teams, or either has no team.
func (c *Spacecraft) IsHostile(other *Spacecraft) bool {
	if other == nil || other == c {
		return false
	}
	if c.team == nil || other.team == nil {
		return true
	}
	return c.team != other.team
}

func (c *Spacecraft) IsFriendly(other *Spacecraft) bool {
	return other != nil && other != c && !c.IsHostile(other)
}

// ForwardSpeed is the velocity component along the nose.
func (c *Spacecraft) ForwardSpeed() float64 {
	return c.body.Velocity().Dot(c.body.Orientation().Forward)
}

// RelativeVector returns the direction from this craft to p in its own frame.
func (c *Spacecraft) RelativeVector(p Vec3) Vec3 {
	return c.body.Orientation().ToLocal(p.Sub(c.body.Position()))
}

// WeaponRange is the longest range among fixed guns, or turrets if none.
func (c *Spacecraft) WeaponRange() float64 {
	r := 0.0
	for _, w := range c.weapons {
		r = max(r, w.Class.Range())
	}
	return r
}

// ProjectileSpeed is the muzzle speed of the first weapon.
func (c *Spacecraft) ProjectileSpeed() float64 {
	if len(c.weapons) == 0 {
		return 0
	}
	return c.weapons[0].Class.ProjectileSpeed
}

// WeaponCooldown is the slowest cooldown among the weapons.
func (c *Spacecraft) WeaponCooldown() float64 {
	cd := 0.0
	for _, w := range c.weapons {
		cd = max(cd, w.Class.Cooldown)
	}
	return cd
}

func (c *Spacecraft) HasFixedWeapons() bool {
	for _, w := range c.weapons {
		if !w.Class.Turret {
			return true
		}
	}
	return false
}

func (c *Spacecraft) SetTarget(target *Spacecraft) {
	if target == c.target {
		return
	}
	if c.target != nil {
		delete(c.target.targetedBy, c)
	}
	c.target = target
	if target != nil {
		target.targetedBy[c] = struct{}{}
	}
}

// IsTargetedBy reports whether other currently has this craft as target.
func (c *Spacecraft) IsTargetedBy(other *Spacecraft) bool {
	_, ok := c.targetedBy[other]
	return ok
}

func (c *Spacecraft) AddEventHandler(event SpacecraftEvent, fn EventHandler) {
	c.handlers[event] = append(c.handlers[event], fn)
}

func (c *Spacecraft) emit(event SpacecraftEvent, info HitInfo) {
	for _, fn := range c.handlers[event] {
		fn(info)
	}
}

// SetCommandHandler installs the receiver of scripted commands (the AI).
func (c *Spacecraft) SetCommandHandler(fn func(SpacecraftCommand)) {
	c.commandHandler = fn
}

// ExecuteCommand forwards a command to the craft's AI. It reports false when
// nothing handles commands for this craft.
func (c *Spacecraft) ExecuteCommand(cmd SpacecraftCommand) bool {
	if c.commandHandler == nil {
		return false
	}
	c.commandHandler(cmd)
	return true
}

// Maneuvering computer commands. Intensities are fractions of the maximum
// angular velocity, speeds are absolute.

func (c *Spacecraft) SetSpeedTarget(v float64) {
	c.speedTarget = Clamp(v, -c.class.MaxSpeed, c.class.MaxSpeed)
}

func (c *Spacecraft) SpeedTarget() float64 { return c.speedTarget }

func (c *Spacecraft) ResetSpeed() { c.speedTarget = 0 }

func (c *Spacecraft) SetStrafeTarget(strafe, lift float64) {
	c.strafeTarget = Clamp(strafe, -c.class.MaxStrafeSpeed, c.class.MaxStrafeSpeed)
	c.liftTarget = Clamp(lift, -c.class.MaxStrafeSpeed, c.class.MaxStrafeSpeed)
}

func (c *Spacecraft) StrafeTarget() (float64, float64) { return c.strafeTarget, c.liftTarget }

func (c *Spacecraft) ResetStrafe() { c.strafeTarget, c.liftTarget = 0, 0 }

func (c *Spacecraft) SetYaw(intensity float64)   { c.yawIntensity = Clamp(intensity, -1, 1) }
func (c *Spacecraft) SetPitch(intensity float64) { c.pitchIntensity = Clamp(intensity, -1, 1) }
func (c *Spacecraft) SetRoll(intensity float64)  { c.rollIntensity = Clamp(intensity, -1, 1) }

func (c *Spacecraft) TurnIntensities() (yaw, pitch, roll float64) {
	return c.yawIntensity, c.pitchIntensity, c.rollIntensity
}

func (c *Spacecraft) ResetTurn() {
	c.yawIntensity, c.pitchIntensity, c.rollIntensity = 0, 0, 0
}

// Simulate advances the craft by dt.
func (c *Spacecraft) Simulate(dt float64) {
	if c.destroyed || c.away {
		return
	}
	if c.hitpoints <= 0 {
		c.timeSinceDeath += dt
		c.body.Integrate(dt, Maneuver{})
		return
	}
	for _, w := range c.weapons {
		if w.cooldown > 0 {
			w.cooldown -= dt
		}
	}
	maxRate := c.class.MaxAngularVelocity
	c.body.Integrate(dt, Maneuver{
		Speed:  c.speedTarget,
		Strafe: c.strafeTarget,
		Lift:   c.liftTarget,
		Rates: Rates{
			Yaw:   c.yawIntensity * maxRate,
			Pitch: c.pitchIntensity * maxRate,
			Roll:  c.rollIntensity * maxRate,
		},
		Acceleration:        c.class.Acceleration,
		AngularAcceleration: c.class.AngularAcceleration,
	})
}

// Fire shoots every ready weapon. Fixed guns fire along the nose, turrets at
// the target when it is inside their cone. Returns the number of projectiles.
func (c *Spacecraft) Fire() int {
	if !c.IsAlive() || c.away {
		return 0
	}
	basis := c.body.Orientation()
	pos := c.body.Position()
	attack := basis.ToWorld(c.class.AttackVector).Unit()
	fired := 0
	for _, w := range c.weapons {
		if !w.Ready() {
			continue
		}
		dir := basis.Forward
		if w.Class.Turret {
			if c.target == nil || !c.target.IsAlive() || c.target.away {
				continue
			}
			toTarget := c.target.Position().Sub(pos)
			if toTarget.Len() > w.Class.Range() || toTarget.AngleTo(attack) > w.Class.TurretCone {
				continue
			}
			dir = toTarget.Unit()
		}
		p := c.ctx.Projectiles.Get()
		p.init(c, w.Class, pos.Add(dir.Scale(c.Size())), c.body.Velocity().Add(dir.Scale(w.Class.ProjectileSpeed)))
		w.cooldown = w.Class.Cooldown
		fired++
	}
	if fired == 0 {
		return 0
	}
	c.shotsFired += fired
	c.emit(EventFired, HitInfo{Source: c, Position: pos})
	for other := range c.targetedBy {
		other.emit(EventTargetFired, HitInfo{Source: c, Position: pos})
	}
	return fired
}

// Damage applies a hit. by may be nil for environmental damage.
func (c *Spacecraft) Damage(amount float64, point Vec3, by *Spacecraft) {
	if !c.IsAlive() || c.away {
		return
	}
	c.hitpoints -= amount
	c.emit(EventBeingHit, HitInfo{Source: by, Position: point, Damage: amount})
	if by != nil {
		if by.IsHostile(c) {
			by.hits++
		}
		by.emit(EventAnySpacecraftHit, HitInfo{Source: c, Position: point, Damage: amount})
		if by.target == c {
			by.emit(EventTargetHit, HitInfo{Source: c, Position: point, Damage: amount})
		}
	}
	if c.hitpoints > 0 {
		return
	}
	c.hitpoints = 0
	c.timeSinceDeath = 0
	if by != nil && by.IsHostile(c) {
		by.score += c.class.ScoreValue
		by.kills++
	}
	c.spawnParticles(ParticleExplosion, ExplosionParticleCount, ExplosionParticleLifetime)
	c.ctx.metrics().SpacecraftDestroyed(c.class.Name)
	c.emit(EventDestructed, HitInfo{Source: by, Position: point})
}

// JumpOut takes the craft out of the battle space.
func (c *Spacecraft) JumpOut() {
	if c.away || !c.IsAlive() {
		return
	}
	c.spawnParticles(ParticleJump, 1, JumpParticleLifetime)
	c.away = true
	c.body.SetVelocity(Vec3{})
	c.ResetSpeed()
	c.ResetStrafe()
	c.ResetTurn()
	c.emit(EventJumpedOut, HitInfo{Source: c})
}

// JumpIn brings an away craft into the battle at the given pose.
func (c *Spacecraft) JumpIn(pos Vec3, orientation Basis) {
	if !c.away || !c.IsAlive() {
		return
	}
	c.away = false
	c.body.SetPosition(pos)
	c.body.SetOrientation(orientation)
	c.body.SetVelocity(Vec3{})
	c.spawnParticles(ParticleJump, 1, JumpParticleLifetime)
	c.emit(EventJumpedIn, HitInfo{Source: c})
}

// Translate shifts the craft, used when the scene is re-centered.
func (c *Spacecraft) Translate(offset Vec3) {
	c.body.SetPosition(c.body.Position().Add(offset))
}

// Destroy finalizes the craft when it leaves the roster. References held by
// other crafts are cut so nothing keeps following it.
func (c *Spacecraft) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.SetTarget(nil)
	for other := range c.targetedBy {
		other.target = nil
	}
	clear(c.targetedBy)
	c.commandHandler = nil
	clear(c.handlers)
}

func (c *Spacecraft) spawnParticles(kind ParticleKind, count int, lifetime float64) {
	pos := c.body.Position()
	for i := 0; i < count; i++ {
		p := c.ctx.Particles.Get()
		vel := Vec3{}
		if count > 1 {
			vel = c.ctx.RandomDirection().Scale(c.Size() * (0.5 + c.ctx.randomFloat()))
		}
		p.init(kind, pos, c.body.Velocity().Add(vel), lifetime, c.Size())
	}
}

// facingAngle returns the angle between the nose and the direction to p.
func (c *Spacecraft) facingAngle(p Vec3) float64 {
	d := p.Sub(c.body.Position())
	if d.LenSq() == 0 {
		return 0
	}
	return math.Abs(c.body.Orientation().Forward.AngleTo(d))
}

// IsFacing reports whether p lies within angle radians of the nose.
func (c *Spacecraft) IsFacing(p Vec3, angle float64) bool {
	return c.facingAngle(p) <= angle
}
