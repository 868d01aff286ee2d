package game

type ParticleKind int

const (
	ParticleHit ParticleKind = iota
	ParticleExplosion
	ParticleJump
)

func (k ParticleKind) String() string {
	switch k {
	case ParticleHit:
		return "hit"
	case ParticleExplosion:
		return "explosion"
	case ParticleJump:
		return "jump"
	}
	return "unknown"
}

// Particle is a short-lived pooled effect. The simulation only tracks where it
// is and how long it lasts; drawing it is up to the client.
type Particle struct {
	Kind     ParticleKind
	pos      Vec3
	vel      Vec3
	size     float64
	lifetime float64
	timeLeft float64
}

func (p *Particle) init(kind ParticleKind, pos, vel Vec3, lifetime, size float64) {
	p.Kind = kind
	p.pos = pos
	p.vel = vel
	p.size = size
	p.lifetime = lifetime
	p.timeLeft = lifetime
}

func (p *Particle) Position() Vec3        { return p.pos }
func (p *Particle) Size() float64         { return p.size }
func (p *Particle) CanBeReused() bool     { return p.timeLeft <= 0 }
func (p *Particle) Translate(offset Vec3) { p.pos = p.pos.Add(offset) }

// Progress runs from 0 at spawn to 1 at expiry.
func (p *Particle) Progress() float64 {
	if p.lifetime <= 0 {
		return 1
	}
	return Clamp(1-p.timeLeft/p.lifetime, 0, 1)
}

func (p *Particle) Simulate(dt float64) {
	p.pos = p.pos.Add(p.vel.Scale(dt))
	p.timeLeft -= dt
}
