package ai

import "math"

const (
	TypeFighter = "fighter"
	TypeShip    = "ship"
)

// Turning and approach.
const (
	// floor of the stopping angle, radians
	MinStopAngle = 0.002
	// offsets below this are treated as aligned
	AlignedAngle = 0.0005
)

// Fighter tactics. Distances marked "range" are fractions of the weapon range.
const (
	FighterApproachFactorStart = 0.5
	FighterApproachFactorMin   = 0.15
	FighterApproachFactorDecay = 0.8
	FighterMinDistanceFactor   = 0.08
	// approach speed per unit of weapon range, per second
	FighterApproachSpeedFactor = 0.4

	// volleys without a hit before the approach distance shrinks
	FighterMissesBeforeCloseIn = 4
	// volleys without a hit, on top of the flight time, before a charge
	FighterMissesBeforeCharge = 8
	// hits taken from other crafts while facing the target before a charge
	FighterHitsBeforeCharge = 3
	// volleys without a hit while facing the target before a roll correction
	FighterMissesBeforeRoll = 6

	FighterAimOffsetInterval = 0.5
	FighterAimErrorMax       = 0.05
	FighterAimErrorMin       = 0.002
	FighterAimErrorTighten   = 0.7
	// successive lead offsets closer than this fraction are considered similar
	FighterAimSimilarity = 0.15
	FighterReactionTime  = 0.3
	FighterMinFireAngle  = 0.01
	// target size multiplier for the fire threshold angle
	FighterFireAngleSizeFactor = 1.0

	FighterEvadeDuration = 0.8
	// critical distance per unit of the two crafts' summed size
	FighterCriticalDistanceFactor = 4.0
	FighterChargeEvadeTimeout     = 6.0
	FighterRollCorrectionAngle    = math.Pi / 2
)

// Ship tactics.
const (
	ShipStandOffFactor    = 0.6
	ShipMinDistanceFactor = 0.25
)
