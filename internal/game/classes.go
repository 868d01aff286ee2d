package game

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrUnknownClass     = errors.New("unknown spacecraft class")
	ErrUnknownWeapon    = errors.New("unknown weapon class")
	ErrUnknownEquipment = errors.New("unknown equipment profile")
)

// TurnStyle selects which two rotational axes a ship uses to line up its
// attack vector with the target.
type TurnStyle string

const (
	TurnYawPitch  TurnStyle = "yawPitch"
	TurnRollYaw   TurnStyle = "rollYaw"
	TurnRollPitch TurnStyle = "rollPitch"
)

const DefaultEquipmentProfile = "default"

// WeaponClass describes a gun or turret.
type WeaponClass struct {
	Name               string
	ProjectileSpeed    float64
	ProjectileLifetime float64
	ProjectileSize     float64
	Cooldown           float64
	Damage             float64
	Turret             bool
	TurretCone         float64 // half angle, radians
}

func (w WeaponClass) Range() float64 { return w.ProjectileSpeed * w.ProjectileLifetime }

// SpacecraftClass holds the static properties shared by all craft of a type.
type SpacecraftClass struct {
	Name                 string
	DisplayName          string
	AIType               string
	Size                 float64
	Hitpoints            float64
	MaxSpeed             float64
	Acceleration         float64
	MaxStrafeSpeed       float64
	MaxAngularVelocity   float64
	AngularAcceleration  float64
	ScoreValue           int
	AttackVector         Vec3 // local direction that should face the target (ships)
	AttackThresholdAngle float64
	TurnStyle            TurnStyle
	Equipment            map[string][]string
}

var WeaponRegistry = map[string]WeaponClass{
	"pulse": {
		Name:               "pulse",
		ProjectileSpeed:    1200,
		ProjectileLifetime: 1.25,
		ProjectileSize:     1,
		Cooldown:           0.25,
		Damage:             12,
	},
	"plasma": {
		Name:               "plasma",
		ProjectileSpeed:    900,
		ProjectileLifetime: 1.5,
		ProjectileSize:     2,
		Cooldown:           0.5,
		Damage:             30,
	},
	"flak": {
		Name:               "flak",
		ProjectileSpeed:    1000,
		ProjectileLifetime: 2,
		ProjectileSize:     2,
		Cooldown:           0.6,
		Damage:             25,
		Turret:             true,
		TurretCone:         math.Pi * 0.6,
	},
	"lance": {
		Name:               "lance",
		ProjectileSpeed:    1500,
		ProjectileLifetime: 2,
		ProjectileSize:     4,
		Cooldown:           2,
		Damage:             150,
		Turret:             true,
		TurretCone:         math.Pi * 0.25,
	},
}

var ClassRegistry = map[string]SpacecraftClass{
	"falcon": {
		Name:                "falcon",
		DisplayName:         "Falcon interceptor",
		AIType:              "fighter",
		Size:                12,
		Hitpoints:           120,
		MaxSpeed:            260,
		Acceleration:        140,
		MaxStrafeSpeed:      80,
		MaxAngularVelocity:  2.4,
		AngularAcceleration: 6,
		ScoreValue:          100,
		AttackVector:        Vec3{Y: 1},
		TurnStyle:           TurnYawPitch,
		Equipment: map[string][]string{
			DefaultEquipmentProfile: {"pulse", "pulse"},
			"heavy":                 {"plasma", "pulse"},
		},
	},
	"viper": {
		Name:                "viper",
		DisplayName:         "Viper heavy fighter",
		AIType:              "fighter",
		Size:                16,
		Hitpoints:           220,
		MaxSpeed:            200,
		Acceleration:        100,
		MaxStrafeSpeed:      60,
		MaxAngularVelocity:  1.8,
		AngularAcceleration: 4,
		ScoreValue:          160,
		AttackVector:        Vec3{Y: 1},
		TurnStyle:           TurnYawPitch,
		Equipment: map[string][]string{
			DefaultEquipmentProfile: {"plasma", "plasma"},
			"light":                 {"pulse", "pulse"},
		},
	},
	"aries": {
		Name:                 "aries",
		DisplayName:          "Aries corvette",
		AIType:               "ship",
		Size:                 60,
		Hitpoints:            1800,
		MaxSpeed:             90,
		Acceleration:         25,
		MaxStrafeSpeed:       20,
		MaxAngularVelocity:   0.6,
		AngularAcceleration:  0.4,
		ScoreValue:           600,
		AttackVector:         Vec3{Y: 1},
		AttackThresholdAngle: 0.15,
		TurnStyle:            TurnYawPitch,
		Equipment: map[string][]string{
			DefaultEquipmentProfile: {"flak", "flak", "lance"},
		},
	},
	"taurus": {
		Name:                 "taurus",
		DisplayName:          "Taurus frigate",
		AIType:               "ship",
		Size:                 110,
		Hitpoints:            4200,
		MaxSpeed:             60,
		Acceleration:         12,
		MaxStrafeSpeed:       10,
		MaxAngularVelocity:   0.35,
		AngularAcceleration:  0.15,
		ScoreValue:           1400,
		AttackVector:         Vec3{X: 1},
		AttackThresholdAngle: 0.2,
		TurnStyle:            TurnRollYaw,
		Equipment: map[string][]string{
			DefaultEquipmentProfile: {"flak", "flak", "flak", "lance", "lance"},
		},
	},
	"centaur": {
		Name:                 "centaur",
		DisplayName:          "Centaur gunship",
		AIType:               "ship",
		Size:                 45,
		Hitpoints:            1200,
		MaxSpeed:             110,
		Acceleration:         35,
		MaxStrafeSpeed:       30,
		MaxAngularVelocity:   0.8,
		AngularAcceleration:  0.6,
		ScoreValue:           450,
		AttackVector:         Vec3{Z: 1},
		AttackThresholdAngle: 0.2,
		TurnStyle:            TurnRollPitch,
		Equipment: map[string][]string{
			DefaultEquipmentProfile: {"flak", "lance"},
		},
	},
}

// GetClass retrieves a spacecraft class by name.
func GetClass(name string) (*SpacecraftClass, error) {
	class, ok := ClassRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, name)
	}
	return &class, nil
}

func GetWeaponClass(name string) (*WeaponClass, error) {
	weapon, ok := WeaponRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWeapon, name)
	}
	return &weapon, nil
}

// ClassNames lists registered classes in a stable order.
func ClassNames() []string {
	names := make([]string, 0, len(ClassRegistry))
	for name := range ClassRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EquipmentProfile resolves a named loadout. An empty name selects the default.
func (c *SpacecraftClass) EquipmentProfile(name string) ([]WeaponClass, error) {
	if name == "" {
		name = DefaultEquipmentProfile
	}
	names, ok := c.Equipment[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownEquipment, c.Name, name)
	}
	weapons := make([]WeaponClass, 0, len(names))
	for _, n := range names {
		w, err := GetWeaponClass(n)
		if err != nil {
			return nil, fmt.Errorf("class %s profile %s: %w", c.Name, name, err)
		}
		weapons = append(weapons, *w)
	}
	return weapons, nil
}

// Validate checks that a class is usable.
func (c *SpacecraftClass) Validate() error {
	if c == nil {
		return fmt.Errorf("class is nil")
	}
	if c.Name == "" {
		return fmt.Errorf("class name cannot be empty")
	}
	if c.Size <= 0 || c.Hitpoints <= 0 {
		return fmt.Errorf("class %s needs positive size and hitpoints", c.Name)
	}
	if c.Acceleration <= 0 || c.AngularAcceleration <= 0 {
		return fmt.Errorf("class %s needs positive accelerations", c.Name)
	}
	if _, err := c.EquipmentProfile(DefaultEquipmentProfile); err != nil {
		return err
	}
	return nil
}
