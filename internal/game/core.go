package game

import (
	"encoding/json"
	"fmt"
	"math"
)

type Vec3 struct{ X, Y, Z float64 }

// Vec3 is written as [x, y, z] in mission documents and snapshots.
func (a Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{a.X, a.Y, a.Z})
}

func (a *Vec3) UnmarshalJSON(data []byte) error {
	var f []float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if len(f) != 3 {
		return fmt.Errorf("vector needs 3 components, got %d", len(f))
	}
	a.X, a.Y, a.Z = f[0], f[1], f[2]
	return nil
}

func (a Vec3) Add(b Vec3) Vec3      { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3      { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Dot(b Vec3) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Len() float64         { return math.Sqrt(a.Dot(a)) }
func (a Vec3) LenSq() float64       { return a.Dot(a) }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dist(b Vec3) float64  { return a.Sub(b).Len() }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// Unit returns the normalized vector, or the zero vector for degenerate input.
func (a Vec3) Unit() Vec3 {
	l := a.Len()
	if l <= 1e-9 {
		return Vec3{}
	}
	return a.Scale(1.0 / l)
}

// AngleTo returns the angle in radians between the two vectors.
func (a Vec3) AngleTo(b Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la <= 1e-9 || lb <= 1e-9 {
		return 0
	}
	return math.Acos(Clamp(a.Dot(b)/(la*lb), -1, 1))
}

// RotateAround rotates v around the unit axis k by angle radians (Rodrigues).
func (a Vec3) RotateAround(k Vec3, angle float64) Vec3 {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return a.Scale(cos).Add(k.Cross(a).Scale(sin)).Add(k.Scale(k.Dot(a) * (1 - cos)))
}

// Perpendicular returns a unit vector perpendicular to a.
func (a Vec3) Perpendicular() Vec3 {
	ref := Vec3{Z: 1}
	if math.Abs(a.Unit().Z) > 0.9 {
		ref = Vec3{X: 1}
	}
	return a.Cross(ref).Unit()
}

// Basis is a right-handed orientation frame. Forward is the nose direction.
type Basis struct {
	Right   Vec3
	Forward Vec3
	Up      Vec3
}

func IdentityBasis() Basis {
	return Basis{Right: Vec3{X: 1}, Forward: Vec3{Y: 1}, Up: Vec3{Z: 1}}
}

// ToLocal expresses a world-space direction in this frame (X right, Y forward, Z up).
func (b Basis) ToLocal(v Vec3) Vec3 {
	return Vec3{X: v.Dot(b.Right), Y: v.Dot(b.Forward), Z: v.Dot(b.Up)}
}

// ToWorld is the inverse of ToLocal.
func (b Basis) ToWorld(v Vec3) Vec3 {
	return b.Right.Scale(v.X).Add(b.Forward.Scale(v.Y)).Add(b.Up.Scale(v.Z))
}

// Yaw turns the nose towards Right by angle radians.
func (b Basis) Yaw(angle float64) Basis {
	cos, sin := math.Cos(angle), math.Sin(angle)
	f := b.Forward.Scale(cos).Add(b.Right.Scale(sin))
	r := b.Right.Scale(cos).Sub(b.Forward.Scale(sin))
	return Basis{Right: r, Forward: f, Up: b.Up}.orthonormal()
}

// Pitch turns the nose towards Up by angle radians.
func (b Basis) Pitch(angle float64) Basis {
	cos, sin := math.Cos(angle), math.Sin(angle)
	f := b.Forward.Scale(cos).Add(b.Up.Scale(sin))
	u := b.Up.Scale(cos).Sub(b.Forward.Scale(sin))
	return Basis{Right: b.Right, Forward: f, Up: u}.orthonormal()
}

// Roll raises the right wing towards Up by angle radians.
func (b Basis) Roll(angle float64) Basis {
	cos, sin := math.Cos(angle), math.Sin(angle)
	r := b.Right.Scale(cos).Add(b.Up.Scale(sin))
	u := b.Up.Scale(cos).Sub(b.Right.Scale(sin))
	return Basis{Right: r, Forward: b.Forward, Up: u}.orthonormal()
}

// RotateWorld rotates the whole frame around a world axis.
func (b Basis) RotateWorld(axis Vec3, angle float64) Basis {
	k := axis.Unit()
	return Basis{
		Right:   b.Right.RotateAround(k, angle),
		Forward: b.Forward.RotateAround(k, angle),
		Up:      b.Up.RotateAround(k, angle),
	}.orthonormal()
}

func (b Basis) orthonormal() Basis {
	f := b.Forward.Unit()
	r := f.Cross(b.Up).Unit()
	if r.LenSq() == 0 {
		return IdentityBasis()
	}
	u := r.Cross(f).Unit()
	return Basis{Right: r, Forward: f, Up: u}
}

// YawPitch returns the yaw (right positive) and pitch (up positive) angles of a
// local-space direction.
func YawPitch(local Vec3) (float64, float64) {
	return math.Atan2(local.X, local.Y), math.Atan2(local.Z, math.Hypot(local.X, local.Y))
}

// WrapAngle maps an angle into (-Pi, Pi].
func WrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
