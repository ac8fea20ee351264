// Package composite applies per-channel write policies to computed noise values.
package composite

import "github.com/MeKo-Tech/procnoise/internal/noise"

// Remap converts raw from its natural range into [0,1], clamping the result.
func Remap(raw float32, r noise.Range) float32 {
	span := r.Max - r.Min
	if span <= 0 {
		return 0
	}
	return clamp01((raw - r.Min) / span)
}

// Channel returns the final value for one channel.
// Keep returns existing untouched; Black, Grey and White ignore raw.
// Write remaps raw into [0,1] and applies invert.
func Channel(existing, raw float32, policy noise.WriteType, invert bool, r noise.Range) float32 {
	switch policy {
	case noise.Black:
		return 0
	case noise.Grey:
		return 0.5
	case noise.White:
		return 1
	case noise.Write:
		v := Remap(raw, r)
		if invert {
			v = 1 - v
		}
		return v
	default:
		return existing
	}
}

// Pixel composites one RGBA value in place from a single shared noise scalar.
func Pixel(px *[4]float32, raw float32, channels noise.Channels, invert bool, r noise.Range) {
	for c, policy := range channels {
		px[c] = Channel(px[c], raw, policy, invert, r)
	}
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
