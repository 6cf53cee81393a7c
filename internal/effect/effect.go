// Package effect implements the parametric and keyframe effect runtimes:
// BPM/phase-driven value generators that presets and executors evaluate
// live rather than recording a fixed value.
package effect

import (
	"fmt"
	"math"
)

// Kind discriminates the shape of a parametric effect's waveform.
type Kind int

const (
	// KindSingleSine drives one attribute with a*sin(b*t+c)+d, clamped to
	// [0,1].
	KindSingleSine Kind = iota
	// KindPairFigureEight drives two attributes (e.g. Pan/Tilt) around a
	// figure-eight Lissajous path.
	KindPairFigureEight
	// KindQuadrupleHueRotate drives three colour-mixing attributes plus a
	// fixed fourth (e.g. ColorAdd_R/G/B + white) around a rotating hue.
	KindQuadrupleHueRotate
)

// Parametric is a closed-form waveform bound to one or more GDTF attribute
// names, evaluated from elapsed time rather than recorded per frame. Its
// accessors are attribute-name-keyed rather than index-based, so a channel's
// active function attribute resolves directly to a value.
type Parametric struct {
	Kind Kind

	// SingleSine
	SingleAttribute string
	A, B, C, D      float32

	// PairFigureEight
	PairAttributeA, PairAttributeB string
	PairSpeed, CenterA, CenterB    float32

	// QuadrupleHueRotate
	QuadAttributeR, QuadAttributeG, QuadAttributeB, QuadAttributeW string
	QuadSpeed                                                      float32
}

// NewSingleSine builds a single-attribute sine wave effect.
func NewSingleSine(attribute string, a, b, c, d float32) *Parametric {
	return &Parametric{Kind: KindSingleSine, SingleAttribute: attribute, A: a, B: b, C: c, D: d}
}

// NewPairFigureEight builds a two-attribute figure-eight effect.
func NewPairFigureEight(attrA, attrB string, speed, centerA, centerB float32) *Parametric {
	return &Parametric{
		Kind: KindPairFigureEight, PairAttributeA: attrA, PairAttributeB: attrB,
		PairSpeed: speed, CenterA: centerA, CenterB: centerB,
	}
}

// NewQuadrupleHueRotate builds a hue-rotating colour-mix effect; attrW may
// be empty if the fixture has no fourth mixing channel.
func NewQuadrupleHueRotate(attrR, attrG, attrB, attrW string, speed float32) *Parametric {
	return &Parametric{
		Kind: KindQuadrupleHueRotate, QuadAttributeR: attrR, QuadAttributeG: attrG,
		QuadAttributeB: attrB, QuadAttributeW: attrW, QuadSpeed: speed,
	}
}

// Attributes returns every GDTF attribute this effect drives.
func (p *Parametric) Attributes() []string {
	switch p.Kind {
	case KindSingleSine:
		return []string{p.SingleAttribute}
	case KindPairFigureEight:
		return []string{p.PairAttributeA, p.PairAttributeB}
	case KindQuadrupleHueRotate:
		attrs := []string{p.QuadAttributeR, p.QuadAttributeG, p.QuadAttributeB}
		if p.QuadAttributeW != "" {
			attrs = append(attrs, p.QuadAttributeW)
		}
		return attrs
	default:
		return nil
	}
}

// AttributeValue evaluates the effect for the given attribute at time t
// (seconds), returning false if attribute isn't one this effect drives.
// speedMultiplier is 2*pi*beatsPerSecond, folded into t by the caller via
// phaseOffset/speed scaling.
func (p *Parametric) AttributeValue(attribute string, t float64, speedMultiplier float32) (float32, bool) {
	switch p.Kind {
	case KindSingleSine:
		if attribute != p.SingleAttribute {
			return 0, false
		}
		v := p.A*sin32(p.B*float32(t)+p.C) + p.D
		return clamp01(v), true

	case KindPairFigureEight:
		c := min32(p.CenterA, 1.0-p.CenterA)
		d := min32(p.CenterB, 1.0-p.CenterB)
		speed := p.PairSpeed * speedMultiplier
		a := p.CenterA + c*sin32(speed*float32(t))
		b := p.CenterB + d*sin32(2.0*speed*float32(t)+halfPi)
		switch attribute {
		case p.PairAttributeA:
			return a, true
		case p.PairAttributeB:
			return b, true
		default:
			return 0, false
		}

	case KindQuadrupleHueRotate:
		speed := p.QuadSpeed * speedMultiplier
		r := sin32(speed * float32(t))
		g := sin32(speed*float32(t) + halfPi)
		bl := sin32(speed*float32(t) + math.Pi)
		switch attribute {
		case p.QuadAttributeR:
			return r, true
		case p.QuadAttributeG:
			return g, true
		case p.QuadAttributeB:
			return bl, true
		case p.QuadAttributeW:
			return 1.0, attribute != ""
		default:
			return 0, false
		}

	default:
		return 0, false
	}
}

// String renders a human-readable formula.
func (p *Parametric) String() string {
	switch p.Kind {
	case KindSingleSine:
		return fmt.Sprintf("%g * sin(%gt + %g) + %g", p.A, p.B, p.C, p.D)
	case KindPairFigureEight:
		return fmt.Sprintf("PairFigureEight(%g, %g, %g)", p.PairSpeed, p.CenterA, p.CenterB)
	case KindQuadrupleHueRotate:
		return fmt.Sprintf("QuadrupleHueRotate(%g)", p.QuadSpeed)
	default:
		return "?"
	}
}

const halfPi = math.Pi / 2

func sin32(x float32) float32 { return float32(math.Sin(float64(x))) }

func clamp01(v float32) float32 {
	return float32(math.Max(0, math.Min(1, float64(v))))
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
