// Package config loads machine descriptions from YAML or JSON files. A
// MachineConfig captures the travel limits and output conventions of one
// lathe; the post-processor validates toolpaths against it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// MachineConfig describes one machine's envelope and G-code conventions.
// All lengths are in the configured units; feeds are units/min.
type MachineConfig struct {
	Name string `yaml:"name" json:"name"`

	// Travel limits. X is radial.
	MinX float64 `yaml:"minX" json:"minX"`
	MaxX float64 `yaml:"maxX" json:"maxX"`
	MinZ float64 `yaml:"minZ" json:"minZ"`
	MaxZ float64 `yaml:"maxZ" json:"maxZ"`

	Units            string  `yaml:"units" json:"units"`                       // "mm" or "inch"
	CoordinateMode   string  `yaml:"coordinateMode" json:"coordinateMode"`     // "radius" or "diameter"
	SpindleDirection string  `yaml:"spindleDirection" json:"spindleDirection"` // "cw" or "ccw"
	RapidFeed        float64 `yaml:"rapidFeed" json:"rapidFeed"`
	SafetyRetract    float64 `yaml:"safetyRetract" json:"safetyRetract"`
	MaxSpindleSpeed  float64 `yaml:"maxSpindleSpeed" json:"maxSpindleSpeed"`
}

// Default returns a generic 2-axis lathe configuration in millimeters
// with diameter-mode output, the common lathe convention.
func Default() MachineConfig {
	return MachineConfig{
		Name:             "generic-lathe",
		MinX:             0,
		MaxX:             200,
		MinZ:             -400,
		MaxZ:             50,
		Units:            "mm",
		CoordinateMode:   "diameter",
		SpindleDirection: "cw",
		RapidFeed:        5000,
		SafetyRetract:    2,
		MaxSpindleSpeed:  4000,
	}
}

// Validate checks the configuration for internal consistency.
func (c MachineConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("machine config: name is required")
	}
	if c.MaxX <= c.MinX {
		return fmt.Errorf("machine config %q: maxX %g must exceed minX %g", c.Name, c.MaxX, c.MinX)
	}
	if c.MaxZ <= c.MinZ {
		return fmt.Errorf("machine config %q: maxZ %g must exceed minZ %g", c.Name, c.MaxZ, c.MinZ)
	}
	switch c.Units {
	case "mm", "inch":
	default:
		return fmt.Errorf("machine config %q: units must be \"mm\" or \"inch\", got %q", c.Name, c.Units)
	}
	switch c.CoordinateMode {
	case "radius", "diameter":
	default:
		return fmt.Errorf("machine config %q: coordinateMode must be \"radius\" or \"diameter\", got %q", c.Name, c.CoordinateMode)
	}
	switch c.SpindleDirection {
	case "cw", "ccw":
	default:
		return fmt.Errorf("machine config %q: spindleDirection must be \"cw\" or \"ccw\", got %q", c.Name, c.SpindleDirection)
	}
	if c.RapidFeed <= 0 {
		return fmt.Errorf("machine config %q: rapidFeed must be positive, got %g", c.Name, c.RapidFeed)
	}
	if c.SafetyRetract < 0 {
		return fmt.Errorf("machine config %q: safetyRetract must be non-negative, got %g", c.Name, c.SafetyRetract)
	}
	if c.MaxSpindleSpeed <= 0 {
		return fmt.Errorf("machine config %q: maxSpindleSpeed must be positive, got %g", c.Name, c.MaxSpindleSpeed)
	}
	return nil
}

// DiameterMode reports whether X words are emitted as diameters.
func (c MachineConfig) DiameterMode() bool { return c.CoordinateMode == "diameter" }

// Load reads and validates a machine configuration. The format follows
// the file extension: .json parses as JSON, everything else as YAML.
func Load(path string) (MachineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MachineConfig{}, fmt.Errorf("machine config: %w", err)
	}

	c := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &c)
	default:
		err = yaml.Unmarshal(data, &c)
	}
	if err != nil {
		return MachineConfig{}, fmt.Errorf("machine config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return MachineConfig{}, err
	}
	return c, nil
}

// Save writes the configuration next to the format implied by the path
// extension, for round-tripping edited configs.
func Save(path string, c MachineConfig) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	default:
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("machine config %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}
