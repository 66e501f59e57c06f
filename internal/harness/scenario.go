package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/deafbeat/internal/config"
	"github.com/roach88/deafbeat/internal/ir"
	"github.com/roach88/deafbeat/internal/voice"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed in any form config.ParseSeed accepts.
	Seed string `yaml:"seed"`

	// MaxFrames caps the render. Zero means the engine default.
	MaxFrames int `yaml:"max_frames,omitempty"`

	// Assertions are evaluated in order; all failures are reported.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the export, the round trip or the trigger log.
type Assertion struct {
	// Type selects the check:
	// - "event_at": an event of Event type (and Aux, if set) at Time
	// - "type_count": exactly Count events of Event type
	// - "event_count": exactly Count events in total
	// - "trigger_count": exactly Count triggers of voice Kind, or of all
	//   kinds when Kind is empty
	// - "bpm": header bpm within Tolerance of Value
	// - "round_trip": parse(export) re-exports byte-identically
	Type string `yaml:"type"`

	Time  uint32 `yaml:"time,omitempty"`
	Event string `yaml:"event,omitempty"`
	Aux   *int   `yaml:"aux,omitempty"`
	Kind  string `yaml:"kind,omitempty"`
	Count int    `yaml:"count,omitempty"`

	Value     float64 `yaml:"value,omitempty"`
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// Assertion type constants.
const (
	AssertEventAt      = "event_at"
	AssertTypeCount    = "type_count"
	AssertEventCount   = "event_count"
	AssertTriggerCount = "trigger_count"
	AssertBPM          = "bpm"
	AssertRoundTrip    = "round_trip"
)

// DefaultBPMTolerance matches the six decimals the document carries.
const DefaultBPMTolerance = 1e-6

var kindNames = func() map[string]bool {
	m := make(map[string]bool)
	for k := voice.KindKick; k <= voice.KindBass; k++ {
		m[k.String()] = true
	}
	return m
}()

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// SeedValue returns the parsed seed.
func (s *Scenario) SeedValue() (uint64, error) {
	return config.ParseSeed(s.Seed)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Seed == "" {
		return fmt.Errorf("seed is required")
	}
	if _, err := s.SeedValue(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if s.MaxFrames < 0 {
		return fmt.Errorf("max_frames must be non-negative")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertEventAt:
		if !ir.ParseEventType(a.Event).Valid() {
			return fmt.Errorf("assertions[%d]: unknown event type %q", index, a.Event)
		}
	case AssertTypeCount:
		if !ir.ParseEventType(a.Event).Valid() {
			return fmt.Errorf("assertions[%d]: unknown event type %q", index, a.Event)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertEventCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertTriggerCount:
		if a.Kind != "" && !kindNames[a.Kind] {
			return fmt.Errorf("assertions[%d]: unknown voice kind %q", index, a.Kind)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertBPM:
		if a.Value <= 0 {
			return fmt.Errorf("assertions[%d]: value is required for bpm", index)
		}
	case AssertRoundTrip:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
