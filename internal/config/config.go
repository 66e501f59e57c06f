// Package config loads render configuration from CUE files.
//
// A configuration file is unified with an embedded schema that supplies
// defaults and bounds, so an empty file yields Default(). The schema is
// closed: unknown fields are errors.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/deafbeat/internal/engine"
	"github.com/roach88/deafbeat/internal/rng"
)

//go:embed schema.cue
var schemaCUE string

// Config is a decoded render configuration.
type Config struct {
	SampleRate int      `json:"sample_rate"`
	FPS        int      `json:"fps"`
	MaxEvents  int      `json:"max_events"`
	MaxFrames  int      `json:"max_frames"`
	Workers    int      `json:"workers"`
	Label      string   `json:"label"`
	Seeds      []string `json:"seeds"`
}

// Error codes for LoadError.
const (
	ErrCodeNotFound    = "E005" // config file not found or unreadable
	ErrCodeSyntax      = "E004" // CUE does not compile
	ErrCodeInvalid     = "E006" // schema violation
	ErrCodeInvalidSeed = "E201" // entry in seeds does not parse
)

// LoadError reports a configuration that could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Default returns the schema defaults.
func Default() Config {
	cfg, err := Parse("default.cue", nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return cfg
}

// Load reads and validates the CUE file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading config: %v", err)}
	}
	return Parse(path, data)
}

// Parse validates CUE source against the schema. filename is used in
// error positions only.
func Parse(filename string, src []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fromCUE(ErrCodeSyntax, err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Config{}, fromCUE(ErrCodeSyntax, err)
	}

	v := def.Unify(user)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fromCUE(ErrCodeInvalid, err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, fromCUE(ErrCodeInvalid, err)
	}
	if cfg.Seeds == nil {
		cfg.Seeds = []string{}
	}
	for i, s := range cfg.Seeds {
		if _, err := ParseSeed(s); err != nil {
			return Config{}, &LoadError{Code: ErrCodeInvalidSeed, Message: fmt.Sprintf("seeds[%d]: %v", i, err)}
		}
	}
	return cfg, nil
}

// fromCUE keeps the first CUE error and its position.
func fromCUE(code string, err error) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	le := &LoadError{Code: code, Message: errs[0].Error()}
	if pos := cueerrors.Positions(errs[0]); len(pos) > 0 {
		le.Pos = pos[0]
	}
	return le
}

// EngineOptions maps the configuration onto composition options.
func (c Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithSampleRate(uint32(c.SampleRate)),
		engine.WithMaxEvents(c.MaxEvents),
		engine.WithMaxFrames(c.MaxFrames),
	}
}

// SeedValues parses Seeds. Load has already validated them.
func (c Config) SeedValues() []uint64 {
	out := make([]uint64, 0, len(c.Seeds))
	for _, s := range c.Seeds {
		seed, err := ParseSeed(s)
		if err != nil {
			continue
		}
		out = append(out, seed)
	}
	return out
}

// ParseSeed accepts a decimal seed, a 0x-prefixed hex seed of up to 16
// digits, or a longer hex hash (with or without 0x) which is folded to 32
// bits with rng.FoldHex.
func ParseSeed(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty seed")
	}

	hex, prefixed := strings.CutPrefix(strings.ToLower(s), "0x")
	if !prefixed && isDecimal(s) {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err == nil {
			return seed, nil
		}
		// Too large for uint64: treat as a hash.
	}
	if hex == "" || !isHexString(hex) {
		return 0, fmt.Errorf("invalid seed %q: want decimal or hex", s)
	}
	if prefixed && len(hex) <= 16 {
		return strconv.ParseUint(hex, 16, 64)
	}
	return uint64(rng.FoldHex(hex)), nil
}

func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isHexString(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
