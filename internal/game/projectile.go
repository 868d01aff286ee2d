package game

import "math"

// Projectile is a pooled shot travelling in a straight line.
type Projectile struct {
	origin   *Spacecraft
	weapon   WeaponClass
	pos      Vec3
	vel      Vec3
	timeLeft float64
}

func (p *Projectile) init(origin *Spacecraft, weapon WeaponClass, pos, vel Vec3) {
	p.origin = origin
	p.weapon = weapon
	p.pos = pos
	p.vel = vel
	p.timeLeft = weapon.ProjectileLifetime
}

func (p *Projectile) Position() Vec3       { return p.pos }
func (p *Projectile) Velocity() Vec3       { return p.vel }
func (p *Projectile) Origin() *Spacecraft  { return p.origin }
func (p *Projectile) Weapon() WeaponClass  { return p.weapon }
func (p *Projectile) CanBeReused() bool    { return p.timeLeft <= 0 }
func (p *Projectile) Translate(offset Vec3) { p.pos = p.pos.Add(offset) }

// Simulate moves the projectile and resolves a hit against the first craft
// its swept segment touches. Octree candidates are post-filtered here, so
// duplicates from straddling objects are harmless.
func (p *Projectile) Simulate(dt float64, tree *Octree[*Spacecraft], ctx *Context) {
	if p.timeLeft <= 0 {
		return
	}
	from := p.pos
	to := from.Add(p.vel.Scale(dt))
	p.pos = to
	p.timeLeft -= dt
	if tree == nil {
		return
	}
	r := p.weapon.ProjectileSize
	candidates := tree.GetObjects(
		min(from.X, to.X)-r, max(from.X, to.X)+r,
		min(from.Y, to.Y)-r, max(from.Y, to.Y)+r,
		min(from.Z, to.Z)-r, max(from.Z, to.Z)+r,
	)
	var hit *Spacecraft
	var hitPoint Vec3
	best := 2.0
	for _, craft := range candidates {
		if craft == p.origin || !craft.IsAlive() || craft.IsAway() {
			continue
		}
		t, ok := segmentSphere(from, to, craft.Position(), craft.Size()+r)
		if ok && t < best {
			best, hit = t, craft
			hitPoint = from.Add(to.Sub(from).Scale(t))
		}
	}
	if hit == nil {
		return
	}
	p.pos = hitPoint
	p.timeLeft = 0
	hit.Damage(p.weapon.Damage, hitPoint, p.origin)
	ctx.metrics().ProjectileHit()
	particle := ctx.Particles.Get()
	particle.init(ParticleHit, hitPoint, hit.Velocity(), HitParticleLifetime, r*4)
}

// segmentSphere returns the first parameter t in [0,1] where the segment
// from a to b comes within radius of center.
func segmentSphere(a, b, center Vec3, radius float64) (float64, bool) {
	d := b.Sub(a)
	f := a.Sub(center)
	c := f.Dot(f) - radius*radius
	if c <= 0 {
		return 0, true
	}
	qa := d.Dot(d)
	if qa == 0 {
		return 0, false
	}
	qb := 2 * f.Dot(d)
	disc := qb*qb - 4*qa*c
	if disc < 0 {
		return 0, false
	}
	t := (-qb - math.Sqrt(disc)) / (2 * qa)
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}
