package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database     DatabaseConfig     `yaml:"database"`
	Model        ModelConfig        `yaml:"model"`
	Audio        AudioConfig        `yaml:"audio"`
	Verification VerificationConfig `yaml:"verification"`
	Server       ServerConfig       `yaml:"server"`
	LogLevel     string             `yaml:"log_level"`
}

// DatabaseConfig holds the profile store settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ModelConfig holds the embedding model settings.
type ModelConfig struct {
	// LibraryPath is the onnxruntime shared library; empty uses the
	// runtime default.
	LibraryPath string `yaml:"library_path"`
	Path        string `yaml:"path"`
	Dimension   int    `yaml:"dimension"`
	SampleRate  int    `yaml:"sample_rate"`
}

// AudioConfig holds audio capture settings.
type AudioConfig struct {
	Enabled        bool    `yaml:"enabled"`
	SampleRate     uint32  `yaml:"sample_rate"`
	Channels       uint32  `yaml:"channels"`
	SegmentSeconds float64 `yaml:"segment_seconds"`
}

// VerificationConfig holds the pipeline decision settings.
type VerificationConfig struct {
	Enabled             bool    `yaml:"enabled"`
	UserID              string  `yaml:"user_id"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	AmplitudeThreshold  float64 `yaml:"amplitude_threshold"`
}

// ServerConfig holds the admin API settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "voicegate")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultDataDir returns the default data directory path.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "voicegate")
}

// DefaultModelsDir returns the default directory for downloaded models.
func DefaultModelsDir() string {
	return filepath.Join(DefaultDataDir(), "models")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(DefaultDataDir(), "profiles.db"),
		},
		Model: ModelConfig{
			Path:       filepath.Join(DefaultModelsDir(), "voxceleb_resnet34_LM.onnx"),
			Dimension:  256,
			SampleRate: 16000,
		},
		Audio: AudioConfig{
			Enabled:        false,
			SampleRate:     16000,
			Channels:       1,
			SegmentSeconds: 3.0,
		},
		Verification: VerificationConfig{
			Enabled:             true,
			UserID:              "default",
			SimilarityThreshold: 0.75,
			AmplitudeThreshold:  0.01,
		},
		Server: ServerConfig{
			ListenAddr: ":8090",
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in paths is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Database.Path = expandTilde(cfg.Database.Path)
	cfg.Model.Path = expandTilde(cfg.Model.Path)
	cfg.Model.LibraryPath = expandTilde(cfg.Model.LibraryPath)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	if c.Model.Path == "" {
		return fmt.Errorf("model.path must not be empty")
	}
	if c.Model.Dimension <= 0 {
		return fmt.Errorf("model.dimension must be > 0")
	}
	if c.Model.SampleRate <= 0 {
		return fmt.Errorf("model.sample_rate must be > 0")
	}

	if c.Audio.SampleRate == 0 {
		return fmt.Errorf("audio.sample_rate must be > 0")
	}
	if c.Audio.Channels == 0 {
		return fmt.Errorf("audio.channels must be > 0")
	}
	if c.Audio.SegmentSeconds <= 0 {
		return fmt.Errorf("audio.segment_seconds must be > 0")
	}

	if c.Verification.UserID == "" {
		return fmt.Errorf("verification.user_id must not be empty")
	}
	if c.Verification.SimilarityThreshold < -1 || c.Verification.SimilarityThreshold > 1 {
		return fmt.Errorf("verification.similarity_threshold must be in [-1, 1], got %v", c.Verification.SimilarityThreshold)
	}
	if c.Verification.AmplitudeThreshold < 0 {
		return fmt.Errorf("verification.amplitude_threshold must be >= 0")
	}

	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// WriteDefault writes the default config to the default config path,
// creating the directory if needed. Returns the written path.
func WriteDefault() (string, error) {
	dir := DefaultConfigDir()
	if dir == "" {
		return "", fmt.Errorf("cannot determine config directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("marshaling default config: %w", err)
	}

	path := DefaultConfigPath()
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
