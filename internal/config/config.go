package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	RunsDir string `toml:"runs_dir"`
}

// Dataset locates the per-video prediction table.
type Dataset struct {
	Path string `toml:"path"`
}

// Filter contains temporal smoothing parameters.
type Filter struct {
	// MinDuration is the shortest run of positive segments kept. Values <= 0
	// disable filtering.
	MinDuration int `toml:"min_duration"`
}

// Subset selects records for a separate metrics row by matching a tag.
type Subset struct {
	Name string `toml:"name"`
	// Tag is the record tag to match (device_class, illumination). Empty
	// selects every record.
	Tag string `toml:"tag"`
	// Match is "contains" or "equals".
	Match      string `toml:"match"`
	Value      string `toml:"value"`
	IgnoreCase bool   `toml:"ignore_case"`
}

// Evaluation contains metrics run settings.
type Evaluation struct {
	Workers int      `toml:"workers"`
	Save    bool     `toml:"save"`
	Subsets []Subset `toml:"subsets"`
}

// Segmentation mirrors the upstream clip and frame segmentation parameters.
type Segmentation struct {
	SegmentSeconds         float64 `toml:"segment_seconds"`
	StepSeconds            float64 `toml:"step_seconds"`
	FramesPerSecond        float64 `toml:"frames_per_second"`
	BatchSize              int     `toml:"batch_size"`
	SequenceSegmentSeconds int     `toml:"sequence_segment_seconds"`
	FFprobeBinary          string  `toml:"ffprobe_binary"`
}

// Transcripts contains inference transcript conversion settings.
type Transcripts struct {
	Symptoms []string `toml:"symptoms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ictal.
//
// Configuration sections by subsystem:
//   - Paths: data, log, and run history directories
//   - Dataset: default prediction table
//   - Filter: minimum spike duration
//   - Evaluation: worker count, persistence, and subset filters
//   - Segmentation: clip windows and frame sampling
//   - Transcripts: recognised symptom names
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	Dataset      Dataset      `toml:"dataset"`
	Filter       Filter       `toml:"filter"`
	Evaluation   Evaluation   `toml:"evaluation"`
	Segmentation Segmentation `toml:"segmentation"`
	Transcripts  Transcripts  `toml:"transcripts"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ictal/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ictal.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and run history directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.RunsDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ResolveDataPath resolves a dataset or transcript path. Relative paths are
// looked up under Paths.DataDir first and fall back to the working directory.
func (c *Config) ResolveDataPath(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("empty path")
	}
	if strings.HasPrefix(value, "~") || filepath.IsAbs(value) {
		return expandPath(value)
	}
	if c.Paths.DataDir != "" {
		candidate := filepath.Join(c.Paths.DataDir, value)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return expandPath(value)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
