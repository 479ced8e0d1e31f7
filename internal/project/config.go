package project

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// LoweringConfig is the [lowering] section of coil.toml.
type LoweringConfig struct {
	// Panic selects the unwinding model: "unwind" keeps cleanup edges and
	// poison states, "abort" assumes panics never return.
	Panic string `toml:"panic"`
	// ValidateConflicts re-checks saved-local assignments against the
	// conflict relation (slow, on for miscompilation hunts).
	ValidateConflicts bool `toml:"validate_conflicts"`
	// Jobs bounds the per-function fan-out; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs"`
}

// TraceConfig is the [trace] section.
type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

// UIConfig is the [ui] section.
type UIConfig struct {
	// Mode: auto|on|off.
	Mode string `toml:"mode"`
}

// Config is the parsed coil.toml.
type Config struct {
	Lowering LoweringConfig `toml:"lowering"`
	Trace    TraceConfig    `toml:"trace"`
	UI       UIConfig       `toml:"ui"`
}

// DefaultConfig returns the configuration used when no coil.toml exists.
func DefaultConfig() Config {
	return Config{
		Lowering: LoweringConfig{Panic: "unwind"},
		Trace:    TraceConfig{Level: "off"},
		UI:       UIConfig{Mode: "auto"},
	}
}

// LoadConfig parses one coil.toml. Unknown keys are an error so typos
// don't silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%q: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// DiscoverConfig finds and parses the nearest coil.toml above startDir.
// Missing manifest is not an error: defaults come back with ok=false.
func DiscoverConfig(startDir string) (Config, bool, error) {
	path, ok, err := FindCoilToml(startDir)
	if err != nil {
		return Config{}, false, err
	}
	if !ok {
		return DefaultConfig(), false, nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return Config{}, false, err
	}
	return cfg, true, nil
}

// WriteDefault writes a commented default coil.toml, refusing to
// overwrite an existing one.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%q already exists", path)
	}
	const manifest = `[lowering]
# panic = "unwind" | "abort"
panic = "unwind"
validate_conflicts = false
# jobs = 0 means one worker per CPU
jobs = 0

[trace]
level = "off"
output = ""

[ui]
mode = "auto"
`
	return os.WriteFile(path, []byte(manifest), 0o644)
}
