// Package noise generates seeded gradient and cellular noise fields and
// evaluates them with fractal (multi-octave) composition over a region box.
package noise

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotImplemented is returned for noise kinds that have parameters but no generator.
	ErrNotImplemented = errors.New("noise kind not implemented")
	// ErrUnknownKind is returned for parameter values outside the known kind set.
	ErrUnknownKind = errors.New("unknown noise kind")
)

// Kind identifies a noise variant.
type Kind int

const (
	KindPerlin Kind = iota
	KindVoronoi
	KindWorley
)

var kindNames = map[Kind]string{
	KindPerlin:  "Perlin",
	KindVoronoi: "Voronoi",
	KindWorley:  "Worley",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// WriteType is the per-channel write policy.
type WriteType int

const (
	Keep WriteType = iota
	Black
	Grey
	White
	Write
)

var writeTypeNames = []string{"keep", "black", "grey", "white", "write"}

func (w WriteType) String() string {
	if w < Keep || w > Write {
		return fmt.Sprintf("WriteType(%d)", int(w))
	}
	return writeTypeNames[w]
}

// ParseWriteType parses a policy name. "gray" is accepted as an alias of "grey".
func ParseWriteType(s string) (WriteType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "gray" {
		s = "grey"
	}
	for i, name := range writeTypeNames {
		if s == name {
			return WriteType(i), nil
		}
	}
	return Keep, fmt.Errorf("invalid write type %q: must be one of %s", s, strings.Join(writeTypeNames, ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (w WriteType) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *WriteType) UnmarshalText(text []byte) error {
	v, err := ParseWriteType(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// Channel indices into Channels and pixel arrays.
const (
	Red = iota
	Green
	Blue
	Alpha
)

// Channels holds the R, G, B, A write policies.
type Channels [4]WriteType

// AllWrite returns channels that all take the computed noise value.
func AllWrite() Channels {
	return Channels{Write, Write, Write, Write}
}

// ParseChannels parses four comma-separated policies, e.g. "write,write,keep,white".
// A single policy is applied to every channel.
func ParseChannels(s string) (Channels, error) {
	parts := strings.Split(s, ",")
	if len(parts) == 1 {
		w, err := ParseWriteType(parts[0])
		if err != nil {
			return Channels{}, err
		}
		return Channels{w, w, w, w}, nil
	}
	if len(parts) != 4 {
		return Channels{}, fmt.Errorf("expected 1 or 4 comma-separated write types, got %d", len(parts))
	}
	var ch Channels
	for i, part := range parts {
		w, err := ParseWriteType(part)
		if err != nil {
			return Channels{}, fmt.Errorf("channel %d: %w", i, err)
		}
		ch[i] = w
	}
	return ch, nil
}

// Summary lists the channels that a generation will overwrite, e.g. "R, G, B".
func (c Channels) Summary() string {
	names := [4]string{"R", "G", "B", "A"}
	var out []string
	for i, w := range c {
		if w != Keep {
			out = append(out, names[i])
		}
	}
	return strings.Join(out, ", ")
}

// Vec3i is an integer 3-vector.
type Vec3i struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

// Max1 clamps every component to at least 1.
func (v Vec3i) Max1() Vec3i {
	return Vec3i{X: max(v.X, 1), Y: max(v.Y, 1), Z: max(v.Z, 1)}
}

func (v Vec3i) String() string {
	return fmt.Sprintf("%dx%dx%d", v.X, v.Y, v.Z)
}

// Vec3 is a float32 3-vector.
type Vec3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) Scale(f float32) Vec3 {
	return Vec3{v.X * f, v.Y * f, v.Z * f}
}

// Region is an axis-aligned box of the noise domain mapped onto [0,1]^3 buffer space.
type Region struct {
	Center  Vec3 `yaml:"center"`
	Extents Vec3 `yaml:"extents"`
}

// NewRegion builds a region from its center and full size.
func NewRegion(center, size Vec3) Region {
	return Region{Center: center, Extents: size.Scale(0.5)}
}

// UnitRegion covers [0,1]^3.
func UnitRegion() Region {
	return NewRegion(Vec3{0.5, 0.5, 0.5}, Vec3{1, 1, 1})
}

func (r Region) Min() Vec3 { return r.Center.Sub(r.Extents) }
func (r Region) Max() Vec3 { return r.Center.Add(r.Extents) }

// Map converts a normalized buffer coordinate into the region.
func (r Region) Map(coord Vec3) Vec3 {
	lo := r.Min()
	return lo.Add(coord.Mul(r.Max().Sub(lo)))
}

// Fractal holds the lattice and octave settings shared by gradient and cellular noise.
type Fractal struct {
	CellCount   Vec3i   `yaml:"cell_count"`
	Octaves     int     `yaml:"octaves"`
	Lacunarity  float32 `yaml:"lacunarity"`
	Persistence float32 `yaml:"persistence"`
	Region      Region  `yaml:"region"`
}

// Normalized clamps out-of-range settings instead of failing.
func (f Fractal) Normalized() Fractal {
	f.CellCount = f.CellCount.Max1()
	f.Octaves = max(f.Octaves, 1)
	f.Lacunarity = max(f.Lacunarity, 0)
	f.Persistence = min(max(f.Persistence, 0), 1)
	return f
}

// Parameters is implemented by every noise variant.
type Parameters interface {
	Kind() Kind
	ChannelSettings() Channels
	Inverted() bool
}

// PerlinParams configures gradient noise.
type PerlinParams struct {
	Fractal  `yaml:",inline"`
	Channels Channels `yaml:"channels"`
	Invert   bool     `yaml:"invert"`
}

// DefaultPerlin mirrors the stock editor defaults.
func DefaultPerlin() PerlinParams {
	return PerlinParams{
		Fractal: Fractal{
			CellCount:   Vec3i{5, 5, 1},
			Octaves:     3,
			Lacunarity:  2,
			Persistence: 0.25,
			Region:      UnitRegion(),
		},
		Channels: AllWrite(),
	}
}

func (p PerlinParams) Kind() Kind                { return KindPerlin }
func (p PerlinParams) ChannelSettings() Channels { return p.Channels }
func (p PerlinParams) Inverted() bool            { return p.Invert }

// WorleyParams configures cellular noise.
type WorleyParams struct {
	Fractal  `yaml:",inline"`
	Channels Channels `yaml:"channels"`
	Invert   bool     `yaml:"invert"`
}

// DefaultWorley mirrors the stock editor defaults.
func DefaultWorley() WorleyParams {
	return WorleyParams{
		Fractal: Fractal{
			CellCount:   Vec3i{5, 5, 5},
			Octaves:     3,
			Lacunarity:  2,
			Persistence: 0.25,
			Region:      UnitRegion(),
		},
		Channels: AllWrite(),
	}
}

func (p WorleyParams) Kind() Kind                { return KindWorley }
func (p WorleyParams) ChannelSettings() Channels { return p.Channels }
func (p WorleyParams) Inverted() bool            { return p.Invert }

// VoronoiParams only carries channel settings; generation is not implemented.
type VoronoiParams struct {
	Channels Channels `yaml:"channels"`
}

func (p VoronoiParams) Kind() Kind                { return KindVoronoi }
func (p VoronoiParams) ChannelSettings() Channels { return p.Channels }
func (p VoronoiParams) Inverted() bool            { return false }

// Defaults returns the default parameters for a kind.
func Defaults(k Kind) (Parameters, error) {
	switch k {
	case KindPerlin:
		return DefaultPerlin(), nil
	case KindWorley:
		return DefaultWorley(), nil
	case KindVoronoi:
		return VoronoiParams{Channels: AllWrite()}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, k)
	}
}

// CellCountOf reports the lattice resolution of parameters that have one.
func CellCountOf(p Parameters) (Vec3i, bool) {
	switch v := p.(type) {
	case PerlinParams:
		return v.CellCount, true
	case *PerlinParams:
		return v.CellCount, true
	case WorleyParams:
		return v.CellCount, true
	case *WorleyParams:
		return v.CellCount, true
	default:
		return Vec3i{}, false
	}
}
