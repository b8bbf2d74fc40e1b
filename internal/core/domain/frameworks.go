package domain

import (
	"time"

	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

// CyclicalType names the recurring-dynamics indicator a cyclical pattern
// records (cliodynamics vocabulary).
type CyclicalType string

const (
	CyclicalEliteOverproduction CyclicalType = "elite_overproduction"
	CyclicalFiscalStrain        CyclicalType = "fiscal_strain"
	CyclicalSocialUnrest        CyclicalType = "social_unrest"
	CyclicalPopulationPressure  CyclicalType = "population_pressure"
	CyclicalAsabiyyah           CyclicalType = "asabiyyah"
	CyclicalCenterPeriphery     CyclicalType = "center_periphery"
)

func ParseCyclicalType(s string) (CyclicalType, error) {
	switch normalize(s) {
	case "elite_overproduction", "elite":
		return CyclicalEliteOverproduction, nil
	case "fiscal_strain", "fiscal":
		return CyclicalFiscalStrain, nil
	case "social_unrest", "unrest":
		return CyclicalSocialUnrest, nil
	case "population_pressure", "population":
		return CyclicalPopulationPressure, nil
	case "asabiyyah", "cohesion":
		return CyclicalAsabiyyah, nil
	case "center_periphery", "center":
		return CyclicalCenterPeriphery, nil
	}

	return "", apperrors.Validationf("type", "unknown cyclical type %q", s)
}

// Valid reports whether the value is a canonical type. Parse aliases never
// count; stored values must be canonical.
func (t CyclicalType) Valid() bool {
	switch t {
	case CyclicalEliteOverproduction, CyclicalFiscalStrain, CyclicalSocialUnrest,
		CyclicalPopulationPressure, CyclicalAsabiyyah, CyclicalCenterPeriphery:
		return true
	}

	return false
}

// LoopType is the feedback polarity of a causal chain.
type LoopType string

const (
	LoopPositive LoopType = "positive"
	LoopNegative LoopType = "negative"
	LoopLinear   LoopType = "linear"
)

func ParseLoopType(s string) (LoopType, error) {
	switch normalize(s) {
	case "positive", "amplifying", "+":
		return LoopPositive, nil
	case "negative", "dampening", "_":
		return LoopNegative, nil
	case "linear", "simple":
		return LoopLinear, nil
	}

	return "", apperrors.Validationf("loop", "unknown loop type %q", s)
}

func (t LoopType) Valid() bool {
	return t == LoopPositive || t == LoopNegative || t == LoopLinear
}

// RelationStrength grades how firmly a causal chain is asserted.
type RelationStrength string

const (
	StrengthStrong      RelationStrength = "strong"
	StrengthModerate    RelationStrength = "moderate"
	StrengthWeak        RelationStrength = "weak"
	StrengthSpeculative RelationStrength = "speculative"
)

func ParseRelationStrength(s string) (RelationStrength, error) {
	switch normalize(s) {
	case "strong":
		return StrengthStrong, nil
	case "moderate", "medium":
		return StrengthModerate, nil
	case "weak":
		return StrengthWeak, nil
	case "speculative", "uncertain":
		return StrengthSpeculative, nil
	}

	return "", apperrors.Validationf("strength", "unknown relation strength %q", s)
}

func (r RelationStrength) Valid() bool {
	switch r {
	case StrengthStrong, StrengthModerate, StrengthWeak, StrengthSpeculative:
		return true
	}

	return false
}

// TransmissionMode is the channel along which an idea spreads
// (dual-inheritance vocabulary).
type TransmissionMode string

const (
	TransmissionHorizontal TransmissionMode = "horizontal"
	TransmissionVertical   TransmissionMode = "vertical"
	TransmissionOblique    TransmissionMode = "oblique"
)

func ParseTransmissionMode(s string) (TransmissionMode, error) {
	switch normalize(s) {
	case "horizontal", "peer":
		return TransmissionHorizontal, nil
	case "vertical", "parent":
		return TransmissionVertical, nil
	case "oblique", "institutional":
		return TransmissionOblique, nil
	}

	return "", apperrors.Validationf("mode", "unknown transmission mode %q", s)
}

func (m TransmissionMode) Valid() bool {
	return m == TransmissionHorizontal || m == TransmissionVertical || m == TransmissionOblique
}

// SystemPosition is a world-systems stance for a geopolitical entity.
type SystemPosition string

const (
	PositionCore          SystemPosition = "core"
	PositionSemiPeriphery SystemPosition = "semi_periphery"
	PositionPeriphery     SystemPosition = "periphery"
)

func ParseSystemPosition(s string) (SystemPosition, error) {
	switch normalize(s) {
	case "core":
		return PositionCore, nil
	case "semi_periphery", "semiperiphery", "semi":
		return PositionSemiPeriphery, nil
	case "periphery":
		return PositionPeriphery, nil
	}

	return "", apperrors.Validationf("stance", "unknown system position %q", s)
}

func (p SystemPosition) Valid() bool {
	return p == PositionCore || p == PositionSemiPeriphery || p == PositionPeriphery
}

// TimescaleScope is a Braudelian timescale for a claim. At most one live
// scope exists per claim; re-tagging replaces the prior scope.
type TimescaleScope string

const (
	ScopeEvent       TimescaleScope = "event"
	ScopeConjuncture TimescaleScope = "conjuncture"
	ScopeLongueDuree TimescaleScope = "longue_duree"
)

func ParseTimescaleScope(s string) (TimescaleScope, error) {
	switch normalize(s) {
	case "event", "short":
		return ScopeEvent, nil
	case "conjuncture", "medium", "cycle":
		return ScopeConjuncture, nil
	case "longue_duree", "longueduree", "long", "structural":
		return ScopeLongueDuree, nil
	}

	return "", apperrors.Validationf("scope", "unknown timescale scope %q", s)
}

func (t TimescaleScope) Valid() bool {
	return t == ScopeEvent || t == ScopeConjuncture || t == ScopeLongueDuree
}

// CyclicalPattern records a recurring-dynamics indicator observed in a video.
type CyclicalPattern struct {
	ID          string
	VideoID     string
	ClaimID     string // optional
	Type        CyclicalType
	Entity      string // civilization or state being described
	Era         Era    // optional
	Description string
	Timestamp   float64 // seconds into the video, optional
	CreatedAt   time.Time
}

// CausalChain links a cause claim to an effect claim with feedback polarity.
type CausalChain struct {
	ID            string
	CauseClaimID  string
	EffectClaimID string
	Loop          LoopType
	Strength      RelationStrength
	VideoID       string // optional
	Notes         string
	CreatedAt     time.Time
}

// Transmission records an idea moving between cultures.
type Transmission struct {
	ID            string
	Idea          string
	SourceCulture string
	TargetCulture string
	Mode          TransmissionMode
	Era           Era    // optional
	RegionID      int64  // optional, interned region
	VideoID       string // optional
	ClaimID       string // optional
	Notes         string
	CreatedAt     time.Time
}

// Position places a named entity in the world-system for an era.
type Position struct {
	ID        string
	Entity    string
	Era       Era
	Stance    SystemPosition
	Notes     string
	CreatedAt time.Time
}

// Flow records surplus moving between two Position entities.
type Flow struct {
	ID             string
	FromPositionID string
	ToPositionID   string
	Resource       string
	Era            Era
	VideoID        string // optional
	ClaimID        string // optional
	Notes          string
	CreatedAt      time.Time
}

// TimescaleTag assigns a claim its single live Braudelian scope.
type TimescaleTag struct {
	ClaimID   string
	Scope     TimescaleScope
	Notes     string
	CreatedAt time.Time
}
