package config

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/gaugekit/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "gaugekit.json"

	// DefaultPort is the default inspector server port.
	DefaultPort = 7070

	// DefaultHost is the default inspector server host.
	DefaultHost = "localhost"

	// DefaultFixturesDir is the default fixture directory.
	DefaultFixturesDir = "fixtures"

	// DefaultFixturePattern is the glob used to find fixture files.
	DefaultFixturePattern = "*.yaml"

	// DefaultSnapshotsDir is the default snapshot directory for the dir backend.
	DefaultSnapshotsDir = "testdata/snapshots"

	// DefaultMetricsNamespace is the Prometheus namespace for gaugekit metrics.
	DefaultMetricsNamespace = "gaugekit"
)

// Adopt modes accepted by HarnessConfig.Adopt.
const (
	AdoptNative      = "native"
	AdoptUnavailable = "unavailable"
	AdoptRejected    = "reject"
)

// Panic policies accepted by ReactiveConfig.PanicPolicy.
const (
	PanicLog     = "log"
	PanicRethrow = "rethrow"
)

// Snapshot backends accepted by SnapshotConfig.Backend.
const (
	SnapshotDir = "dir"
	SnapshotS3  = "s3"
)

// Config represents the complete gaugekit.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Fixtures configures where fixture files live.
	Fixtures FixturesConfig `json:"fixtures,omitempty"`

	// Harness configures the default DOM environment for fixture runs.
	Harness HarnessConfig `json:"harness,omitempty"`

	// Reactive configures reactive cell behavior.
	Reactive ReactiveConfig `json:"reactive,omitempty"`

	// Log configures structured logging.
	Log LogConfig `json:"log,omitempty"`

	// Serve configures the inspector server.
	Serve ServeConfig `json:"serve,omitempty"`

	// Snapshots configures the HTML snapshot store.
	Snapshots SnapshotConfig `json:"snapshots,omitempty"`

	// Metrics configures Prometheus metric names.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// FixturesConfig contains fixture discovery settings.
type FixturesConfig struct {
	// Dir is the directory containing fixture files.
	Dir string `json:"dir,omitempty"`

	// Pattern is the glob matched against file names in Dir.
	Pattern string `json:"pattern,omitempty"`
}

// HarnessConfig contains the default DOM environment settings.
// Fixtures can override each of these.
type HarnessConfig struct {
	// SeparateBuildDocument builds trees in a different document than the
	// one owning the mount container.
	SeparateBuildDocument bool `json:"separateBuildDocument,omitempty"`

	// Adopt selects how the mount document answers AdoptNode:
	// "native", "unavailable" or "reject".
	Adopt string `json:"adopt,omitempty"`

	// StrictAppend makes AppendChild fail for nodes owned by another document.
	StrictAppend bool `json:"strictAppend,omitempty"`
}

// ReactiveConfig contains reactive cell settings.
type ReactiveConfig struct {
	// PanicPolicy is "log" (recover, log, continue) or "rethrow"
	// (recover, run remaining subscribers, re-panic).
	PanicPolicy string `json:"panicPolicy,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// ServeConfig contains inspector server settings.
type ServeConfig struct {
	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`
}

// SnapshotConfig contains snapshot store settings.
type SnapshotConfig struct {
	// Backend is "dir" or "s3".
	Backend string `json:"backend,omitempty"`

	// Dir is the snapshot directory for the dir backend.
	Dir string `json:"dir,omitempty"`

	// Bucket is the S3 bucket for the s3 backend.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the S3 key prefix.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint (MinIO, localstack).
	Endpoint string `json:"endpoint,omitempty"`

	// PathStyle forces path-style S3 addressing.
	PathStyle bool `json:"pathStyle,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Fixtures: FixturesConfig{
			Dir:     DefaultFixturesDir,
			Pattern: DefaultFixturePattern,
		},
		Harness: HarnessConfig{
			SeparateBuildDocument: true,
			Adopt:                 AdoptNative,
		},
		Reactive: ReactiveConfig{
			PanicPolicy: PanicLog,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Serve: ServeConfig{
			Port: DefaultPort,
			Host: DefaultHost,
		},
		Snapshots: SnapshotConfig{
			Backend: SnapshotDir,
			Dir:     DefaultSnapshotsDir,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for gaugekit.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No gaugekit.json found in " + filepath.Dir(path)).
				WithSuggestion("Create gaugekit.json or pass --config")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New("E120").
			WithDetail("Failed to parse gaugekit.json: " + err.Error()).
			WithSuggestion("Check that gaugekit.json is valid JSON").
			Wrap(err)
		var syntax *json.SyntaxError
		var typ *json.UnmarshalTypeError
		switch {
		case stderrors.As(err, &syntax):
			e = e.AtOffset(path, data, syntax.Offset)
		case stderrors.As(err, &typ):
			e = e.AtOffset(path, data, typ.Offset)
		}
		return nil, e
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Fixtures.Dir == "" {
		c.Fixtures.Dir = DefaultFixturesDir
	}
	if c.Fixtures.Pattern == "" {
		c.Fixtures.Pattern = DefaultFixturePattern
	}

	if c.Harness.Adopt == "" {
		c.Harness.Adopt = AdoptNative
	}

	if c.Reactive.PanicPolicy == "" {
		c.Reactive.PanicPolicy = PanicLog
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}

	if c.Snapshots.Backend == "" {
		c.Snapshots.Backend = SnapshotDir
	}
	if c.Snapshots.Dir == "" {
		c.Snapshots.Dir = DefaultSnapshotsDir
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 0 and 65535")
	}
	switch c.Harness.Adopt {
	case AdoptNative, AdoptUnavailable, AdoptRejected:
	default:
		return errors.New("E123").
			WithDetail("harness.adopt must be native, unavailable or reject, got " + c.Harness.Adopt)
	}
	switch c.Reactive.PanicPolicy {
	case PanicLog, PanicRethrow:
	default:
		return errors.New("E123").
			WithDetail("reactive.panicPolicy must be log or rethrow, got " + c.Reactive.PanicPolicy)
	}
	switch c.Snapshots.Backend {
	case SnapshotDir:
	case SnapshotS3:
		if c.Snapshots.Bucket == "" {
			return errors.New("E121").
				WithDetail("snapshots.bucket is required for the s3 backend")
		}
	default:
		return errors.New("E123").
			WithDetail("snapshots.backend must be dir or s3, got " + c.Snapshots.Backend)
	}
	return nil
}

// ServeAddress returns the address string for the inspector server.
func (c *Config) ServeAddress() string {
	return c.Serve.Host + ":" + itoa(c.Serve.Port)
}

// ServeURL returns the full URL for the inspector server.
func (c *Config) ServeURL() string {
	return "http://" + c.ServeAddress()
}

// FixturesPath returns the absolute path to the fixtures directory.
func (c *Config) FixturesPath() string {
	return c.resolve(c.Fixtures.Dir, DefaultFixturesDir)
}

// SnapshotsPath returns the absolute path to the snapshot directory.
func (c *Config) SnapshotsPath() string {
	return c.resolve(c.Snapshots.Dir, DefaultSnapshotsDir)
}

func (c *Config) resolve(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// LogLevel returns the configured slog level. Unknown names map to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing gaugekit.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No gaugekit.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

// itoa converts int to string without importing strconv.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	digits := make([]byte, 0, 10)
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}
