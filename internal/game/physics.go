package game

// Rates are angular velocities in radians per second around the craft's own axes.
type Rates struct {
	Yaw   float64
	Pitch float64
	Roll  float64
}

// Maneuver is what the maneuvering computer asks of the physical body for one step.
type Maneuver struct {
	Speed               float64 // forward
	Strafe              float64 // right
	Lift                float64 // up
	Rates               Rates
	Acceleration        float64
	AngularAcceleration float64
}

// PhysicalBody is the physics collaborator a spacecraft queries and commands.
type PhysicalBody interface {
	Position() Vec3
	SetPosition(Vec3)
	Orientation() Basis
	SetOrientation(Basis)
	Velocity() Vec3
	SetVelocity(Vec3)
	AngularRates() Rates
	Size() float64
	Integrate(dt float64, m Maneuver)
}

// KinematicBody is a compensated-flight body: local velocity and angular
// rates move towards the commanded targets, bounded by the accelerations.
type KinematicBody struct {
	pos   Vec3
	basis Basis
	vel   Vec3
	rates Rates
	size  float64
}

func NewKinematicBody(pos Vec3, basis Basis, size float64) *KinematicBody {
	return &KinematicBody{pos: pos, basis: basis, size: size}
}

func (b *KinematicBody) Position() Vec3         { return b.pos }
func (b *KinematicBody) SetPosition(p Vec3)     { b.pos = p }
func (b *KinematicBody) Orientation() Basis     { return b.basis }
func (b *KinematicBody) SetOrientation(o Basis) { b.basis = o }
func (b *KinematicBody) Velocity() Vec3         { return b.vel }
func (b *KinematicBody) SetVelocity(v Vec3)     { b.vel = v }
func (b *KinematicBody) AngularRates() Rates    { return b.rates }
func (b *KinematicBody) Size() float64          { return b.size }

func (b *KinematicBody) Integrate(dt float64, m Maneuver) {
	if dt <= 0 {
		return
	}
	local := b.basis.ToLocal(b.vel)
	step := m.Acceleration * dt
	local.X = approachValue(local.X, m.Strafe, step)
	local.Y = approachValue(local.Y, m.Speed, step)
	local.Z = approachValue(local.Z, m.Lift, step)
	b.vel = b.basis.ToWorld(local)

	angStep := m.AngularAcceleration * dt
	b.rates.Yaw = approachValue(b.rates.Yaw, m.Rates.Yaw, angStep)
	b.rates.Pitch = approachValue(b.rates.Pitch, m.Rates.Pitch, angStep)
	b.rates.Roll = approachValue(b.rates.Roll, m.Rates.Roll, angStep)

	b.pos = b.pos.Add(b.vel.Scale(dt))
	b.basis = b.basis.Yaw(b.rates.Yaw * dt).Pitch(b.rates.Pitch * dt).Roll(b.rates.Roll * dt)
}

func approachValue(current, target, step float64) float64 {
	if current < target {
		return min(current+step, target)
	}
	return max(current-step, target)
}
