package texture

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ChannelStats summarizes one channel of a buffer.
type ChannelStats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Stats computes per-channel statistics over every texel.
func Stats(b *Buffer) [Channels]ChannelStats {
	var out [Channels]ChannelStats
	values := make([]float64, b.Len())
	for c := 0; c < Channels; c++ {
		for i := range values {
			values[i] = float64(b.Pix[i*Channels+c])
		}
		mean, std := stat.MeanStdDev(values, nil)
		if len(values) < 2 {
			std = 0
		}
		out[c] = ChannelStats{
			Min:    floats.Min(values),
			Max:    floats.Max(values),
			Mean:   mean,
			StdDev: std,
		}
	}
	return out
}
