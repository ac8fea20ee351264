package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/procnoise/internal/noise"
)

// Manifest is a batch of requests read from YAML:
//
//	requests:
//	  - kind: perlin
//	    width: 256
//	    auto_name: true
//	    params:
//	      cell_count: {x: 8, y: 8, z: 1}
//	      channels: [write, write, keep, white]
type Manifest struct {
	Requests []Entry `yaml:"requests"`
}

// Entry is one manifest request. Params overrides the kind's defaults field by field.
type Entry struct {
	Kind     string    `yaml:"kind"`
	Width    int       `yaml:"width"`
	Height   int       `yaml:"height"`
	Depth    int       `yaml:"depth"`
	Is3D     bool      `yaml:"is_3d"`
	Rotation float32   `yaml:"rotation"`
	Name     string    `yaml:"name"`
	AutoName bool      `yaml:"auto_name"`
	Format   string    `yaml:"format"`
	Params   yaml.Node `yaml:"params"`
}

// Request converts the entry into a pipeline request.
func (e Entry) Request() (Request, error) {
	kind, err := noise.ParseKind(e.Kind)
	if err != nil {
		return Request{}, err
	}
	format, err := ParseFormat(e.Format)
	if err != nil {
		return Request{}, err
	}
	params, err := e.params(kind)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Params:   params,
		Width:    e.Width,
		Height:   e.Height,
		Depth:    e.Depth,
		Is3D:     e.Is3D,
		Rotation: e.Rotation,
		Name:     e.Name,
		AutoName: e.AutoName,
		Format:   format,
	}, nil
}

func (e Entry) params(kind noise.Kind) (noise.Parameters, error) {
	def, err := noise.Defaults(kind)
	if err != nil {
		return nil, err
	}
	if e.Params.Kind == 0 {
		return def, nil
	}

	switch p := def.(type) {
	case noise.PerlinParams:
		err = e.Params.Decode(&p)
		def = p
	case noise.WorleyParams:
		err = e.Params.Decode(&p)
		def = p
	case noise.VoronoiParams:
		err = e.Params.Decode(&p)
		def = p
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s params: %w", kind, err)
	}
	return def, nil
}

// ParseManifest decodes a manifest and converts every entry.
func ParseManifest(data []byte) ([]Request, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	reqs := make([]Request, 0, len(m.Requests))
	for i, e := range m.Requests {
		req, err := e.Request()
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) ([]Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}
