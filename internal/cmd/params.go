package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/MeKo-Tech/procnoise/internal/noise"
)

// paramKeys are the per-kind parameter settings. Command-line values live
// under params.<key>; config files set <kind>.<key>, e.g. worley.octaves.
var paramKeys = []string{
	"cell_count", "octaves", "lacunarity", "persistence",
	"region_center", "region_size", "channels", "invert",
}

// lookupParam returns the command-line override or the kind's configured value.
func lookupParam(kind noise.Kind, key string) (string, bool) {
	for _, k := range []string{"params." + key, strings.ToLower(kind.String()) + "." + key} {
		if viper.IsSet(k) {
			return viper.GetString(k), true
		}
	}
	return "", false
}

// buildParams starts from the kind's defaults and applies configured overrides.
func buildParams(kind noise.Kind) (noise.Parameters, error) {
	def, err := noise.Defaults(kind)
	if err != nil {
		return nil, err
	}

	switch p := def.(type) {
	case noise.PerlinParams:
		err = applyParams(kind, &p.Fractal, &p.Channels, &p.Invert)
		def = p
	case noise.WorleyParams:
		err = applyParams(kind, &p.Fractal, &p.Channels, &p.Invert)
		def = p
	case noise.VoronoiParams:
		err = applyParams(kind, nil, &p.Channels, nil)
		def = p
	}
	if err != nil {
		return nil, err
	}
	return def, nil
}

func applyParams(kind noise.Kind, f *noise.Fractal, ch *noise.Channels, invert *bool) error {
	center, size := noise.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, noise.Vec3{X: 1, Y: 1, Z: 1}
	if f != nil {
		center = f.Region.Center
		size = f.Region.Extents.Scale(2)
	}

	for _, key := range paramKeys {
		raw, ok := lookupParam(kind, key)
		if !ok {
			continue
		}
		if f == nil && key != "channels" {
			continue
		}

		var err error
		switch key {
		case "cell_count":
			f.CellCount, err = parseVec3i(raw)
		case "octaves":
			f.Octaves, err = strconv.Atoi(strings.TrimSpace(raw))
		case "lacunarity":
			f.Lacunarity, err = parseFloat32(raw)
		case "persistence":
			f.Persistence, err = parseFloat32(raw)
		case "region_center":
			center, err = parseVec3(raw, 0.5)
		case "region_size":
			size, err = parseVec3(raw, 1)
		case "channels":
			*ch, err = noise.ParseChannels(raw)
		case "invert":
			*invert, err = strconv.ParseBool(strings.TrimSpace(raw))
		}
		if err != nil {
			return fmt.Errorf("invalid %s %s %q: %w", strings.ToLower(kind.String()), key, raw, err)
		}
	}

	if f != nil {
		f.Region = noise.NewRegion(center, size)
	}
	return nil
}

// parseVec3i parses "x,y" or "x,y,z"; a missing z is 1.
func parseVec3i(s string) (noise.Vec3i, error) {
	parts, err := splitComponents(s)
	if err != nil {
		return noise.Vec3i{}, err
	}
	v := [3]int{1, 1, 1}
	for i, part := range parts {
		if v[i], err = strconv.Atoi(part); err != nil {
			return noise.Vec3i{}, fmt.Errorf("component %d: %w", i, err)
		}
	}
	return noise.Vec3i{X: v[0], Y: v[1], Z: v[2]}, nil
}

// parseVec3 parses "x,y" or "x,y,z"; a missing z takes defZ.
func parseVec3(s string, defZ float32) (noise.Vec3, error) {
	parts, err := splitComponents(s)
	if err != nil {
		return noise.Vec3{}, err
	}
	v := [3]float32{0, 0, defZ}
	for i, part := range parts {
		if v[i], err = parseFloat32(part); err != nil {
			return noise.Vec3{}, fmt.Errorf("component %d: %w", i, err)
		}
	}
	return noise.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func splitComponents(s string) ([]string, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("expected 2 or 3 comma-separated values, got %d", len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

func parseFloat32(s string) (float32, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	return float32(f), err
}
