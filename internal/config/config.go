package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"

	"speteval/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Dataset describes how tabular datasets are read and filtered.
type Dataset struct {
	PathColumn string `toml:"path_column"`
	TextColumn string `toml:"text_column"`
	Delimiter  string `toml:"delimiter"`
	// Workers bounds concurrent row evaluation. Zero uses one worker per CPU.
	Workers int `toml:"workers"`
	// OnError is "abort" (stop at the first record error) or "skip" (drop
	// the record and continue).
	OnError string `toml:"on_error"`
}

// S3 contains the object storage connection used when storage.backend is "s3".
type S3 struct {
	Bucket          string `toml:"bucket"`
	Prefix          string `toml:"prefix"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	MaxRetries      int    `toml:"max_retries"`
}

// Storage selects where audio references are resolved.
type Storage struct {
	Backend string `toml:"backend"`
	// Root is the base directory for relative local paths.
	Root string `toml:"root"`
	S3   S3     `toml:"s3"`
}

// FileExistence toggles the existence check.
type FileExistence struct {
	Enabled bool `toml:"enabled"`
}

// Loadability toggles the decode check.
type Loadability struct {
	Enabled bool `toml:"enabled"`
}

// Extension restricts accepted file extensions (without the dot).
type Extension struct {
	Enabled bool     `toml:"enabled"`
	Allowed []string `toml:"allowed"`
}

// Channels configures the channel count check.
type Channels struct {
	Enabled   bool `toml:"enabled"`
	Expected  int  `toml:"expected"`
	MinLength int  `toml:"min_length"`
}

// SampleRate configures the sample rate check.
type SampleRate struct {
	Enabled bool `toml:"enabled"`
	Target  int  `toml:"target"`
}

// Length bounds the audio extent or the transcript length.
type Length struct {
	Enabled bool   `toml:"enabled"`
	Source  string `toml:"source"`
	Min     int    `toml:"min"`
	Max     int    `toml:"max"`
}

// TextToSpeech bounds the characters-per-sample ratio.
type TextToSpeech struct {
	Enabled  bool    `toml:"enabled"`
	MinRatio float64 `toml:"min_ratio"`
	MaxRatio float64 `toml:"max_ratio"`
}

// TextToFrame bounds the characters-per-frame ratio, which keeps CTC targets
// no longer than the frame sequence.
type TextToFrame struct {
	Enabled   bool    `toml:"enabled"`
	HopLength int     `toml:"hop_length"`
	Threshold float64 `toml:"threshold"`
}

// Validators holds one table per quality rule.
type Validators struct {
	FileExistence FileExistence `toml:"file_existence"`
	Loadability   Loadability   `toml:"loadability"`
	Extension     Extension     `toml:"extension"`
	Channels      Channels      `toml:"channels"`
	SampleRate    SampleRate    `toml:"sample_rate"`
	Length        Length        `toml:"length"`
	TextToSpeech  TextToSpeech  `toml:"text_to_speech"`
	TextToFrame   TextToFrame   `toml:"text_to_frame"`
}

// Config encapsulates all configuration values for speteval.
//
// Configuration sections by subsystem:
//   - Paths: run database and log directories
//   - Logging: log format, level, and retention
//   - Dataset: CSV columns, delimiter, worker count, error policy
//   - Storage: local root or S3 bucket holding the audio
//   - Validators: which quality rules run and their thresholds
type Config struct {
	Paths      Paths      `toml:"paths"`
	Logging    Logging    `toml:"logging"`
	Dataset    Dataset    `toml:"dataset"`
	Storage    Storage    `toml:"storage"`
	Validators Validators `toml:"validators"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/speteval/config.toml")
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

	projectPath, err := filepath.Abs("speteval.toml")
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

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RunDatabasePath returns the SQLite file that records filter runs.
func (c *Config) RunDatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "runs.db")
}

// LogFilePath returns the persistent log file.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "speteval.log")
}

// DelimiterRune returns the CSV field separator.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Dataset.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
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

	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
