package runtime

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"

	"github.com/naoina/toml"

	"github.com/blockcraft/blockscript/pkg/evaluator"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Config is the contents of a bs.toml file.
type Config struct {
	Run   RunConfig
	Log   LogConfig
	Repl  ReplConfig
	Serve ServeConfig
}

// RunConfig controls parsing and evaluation.
type RunConfig struct {
	MaxCallDepth   int
	MaxArraySize   int64 // elements in one array, inner arrays included
	MaxSteps       int64 // 0 is unlimited
	TimeLimitMs    int64 // 0 is unlimited
	StrictStrings  bool  // reject string literals left open at end of line or input
	ParseCacheSize int   // parsed expressions kept by ParseExpression
}

// LogConfig controls the CLI log handler.
type LogConfig struct {
	Verbosity int // 0=crit .. 4=debug
}

// ReplConfig controls the interactive shell.
type ReplConfig struct {
	Prompt      string
	HistoryFile string `toml:",omitempty"`
}

// ServeConfig controls the playground HTTP server.
type ServeConfig struct {
	Addr           string
	AllowedOrigins []string
	MaxBodyBytes   int64
	RunsPerSecond  float64 // 0 disables rate limiting of /v1/run
	RunBurst       int
	MaxSteps       int64 // budget of one /v1/run, 0 is unlimited
	TimeLimitMs    int64
}

// DefaultConfig contains the default settings.
var DefaultConfig = Config{
	Run: RunConfig{
		MaxCallDepth:   evaluator.DefaultMaxCallDepth,
		MaxArraySize:   evaluator.DefaultMaxArraySize,
		ParseCacheSize: 256,
	},
	Log: LogConfig{
		Verbosity: 2,
	},
	Repl: ReplConfig{
		Prompt: "bs> ",
	},
	Serve: ServeConfig{
		Addr:           "localhost:8420",
		AllowedOrigins: []string{"*"},
		MaxBodyBytes:   1 << 20,
		RunsPerSecond:  20,
		RunBurst:       40,
		MaxSteps:       1000000,
		TimeLimitMs:    2000,
	},
}

// ProjectConfigFile is the name of the per-project configuration file.
const ProjectConfigFile = "bs.toml"

// FindConfig returns the configuration file that applies in dir: dir/bs.toml,
// then ~/.bs/config.toml. It returns "" when neither exists.
func FindConfig(dir string) string {
	candidates := []string{filepath.Join(dir, ProjectConfigFile)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".bs", "config.toml"))
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadConfig decodes the TOML file at path over cfg. Fields absent from the
// file keep their current values; unknown fields are an error.
func LoadConfig(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = DecodeConfig(bufio.NewReader(f), cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// DecodeConfig decodes TOML from r over cfg.
func DecodeConfig(r io.Reader, cfg *Config) error {
	return tomlSettings.NewDecoder(r).Decode(cfg)
}

// DumpConfig renders cfg as TOML.
func DumpConfig(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}
