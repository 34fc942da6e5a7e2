package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvConfigPath = "TASKGATE_CONFIG"
	EnvDataRoot   = "TASKGATE_DATA_ROOT"
)

// RuleSpec is a classifier rule as written in YAML.
type RuleSpec struct {
	ID        string   `yaml:"id"`
	Operation string   `yaml:"operation"`
	AllOf     []string `yaml:"all_of"`
}

// ClassifierConfig controls instruction classification.
type ClassifierConfig struct {
	FoldCase bool       `yaml:"fold_case"`
	Rules    []RuleSpec `yaml:"rules"`
}

// GuardConfig controls the sandbox guard.
type GuardConfig struct {
	// DenylistPath points at a YAML vocabulary file; empty uses built-ins.
	DenylistPath string `yaml:"denylist"`
}

// SetupConfig parameterizes install_and_run_setup.
type SetupConfig struct {
	Tool            string   `yaml:"tool"`
	Install         []string `yaml:"install"`
	Script          string   `yaml:"script"`
	IdentityEnv     string   `yaml:"identity_env"`
	DefaultIdentity string   `yaml:"default_identity"`
}

// OperationsConfig holds per-operation knobs.
type OperationsConfig struct {
	Weekday     string      `yaml:"weekday"`
	SumCategory string      `yaml:"sum_category"`
	RecentLogs  int         `yaml:"recent_logs"`
	Formatter   []string    `yaml:"formatter"`
	Setup       SetupConfig `yaml:"setup"`
}

// ReadConfig controls the file reader endpoint.
type ReadConfig struct {
	Unrestricted bool `yaml:"unrestricted"`
}

// HTTPConfig controls the HTTP listener.
type HTTPConfig struct {
	Addr           string `yaml:"addr"`
	MaxConnections int    `yaml:"max_connections"`
}

// GRPCConfig controls the optional gRPC listener. Port 0 disables it.
type GRPCConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	File    string `yaml:"file"`
	Journal bool   `yaml:"journal"`
}

// Config is the full taskgate configuration. It is constructed once at
// startup and passed explicitly to every component.
type Config struct {
	DataRoot    string           `yaml:"data_root"`
	ExecTimeout time.Duration    `yaml:"exec_timeout"`
	Classifier  ClassifierConfig `yaml:"classifier"`
	Guard       GuardConfig      `yaml:"guard"`
	Operations  OperationsConfig `yaml:"operations"`
	Read        ReadConfig       `yaml:"read"`
	HTTP        HTTPConfig       `yaml:"http"`
	GRPC        GRPCConfig       `yaml:"grpc"`
	Logging     LoggingConfig    `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataRoot: "/data",
		Operations: OperationsConfig{
			Weekday:     "Wednesday",
			SumCategory: "Gold",
			RecentLogs:  10,
			Formatter:   []string{"npx", "prettier@3.4.2", "--write"},
			Setup: SetupConfig{
				Tool:            "uv",
				Install:         []string{"pip", "install", "uv"},
				Script:          "https://raw.githubusercontent.com/sanand0/tools-in-data-science-public/tds-2025-01/project-1/datagen.py",
				IdentityEnv:     "USER_EMAIL",
				DefaultIdentity: "user@example.com",
			},
		},
		HTTP: HTTPConfig{
			Addr:           ":8000",
			MaxConnections: 16,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns ~/.taskgate/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskgate", "config.yaml"), nil
}

// Load reads configuration from a YAML file.
// Empty path falls back to ~/.taskgate/config.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithHash(path)
	return cfg, err
}

// LoadWithHash loads configuration and returns the SHA-256 of the raw bytes.
// When no file exists the hash is the SHA-256 of empty input.
func LoadWithHash(path string) (*Config, string, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default(), hashBytes(nil), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), hashBytes(nil), nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, hashBytes(data), nil
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}

// ApplyEnv overrides fields from the process environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDataRoot); v != "" {
		c.DataRoot = v
	}
}

// Identity returns the identity passed to the setup script: the configured
// environment variable when set, otherwise the default identity.
func (c *Config) Identity() string {
	s := c.Operations.Setup
	if s.IdentityEnv != "" {
		if v := os.Getenv(s.IdentityEnv); v != "" {
			return v
		}
	}
	return s.DefaultIdentity
}

// Weekday parses Operations.Weekday.
func (c *Config) Weekday() (time.Weekday, error) {
	return ParseWeekday(c.Operations.Weekday)
}

// ParseWeekday maps an English weekday name (any case) to time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// Validate checks invariants that cannot be expressed in YAML.
func (c *Config) Validate() error {
	if c.DataRoot == "" {
		return fmt.Errorf("data_root must be set")
	}
	if !filepath.IsAbs(c.DataRoot) {
		return fmt.Errorf("data_root must be absolute, got %q", c.DataRoot)
	}
	if _, err := c.Weekday(); err != nil {
		return err
	}
	if c.Operations.RecentLogs <= 0 {
		return fmt.Errorf("operations.recent_logs must be positive")
	}
	if len(c.Operations.Formatter) == 0 {
		return fmt.Errorf("operations.formatter must name a command")
	}
	if c.Operations.Setup.Tool == "" {
		return fmt.Errorf("operations.setup.tool must be set")
	}
	if c.ExecTimeout < 0 {
		return fmt.Errorf("exec_timeout must not be negative")
	}
	return nil
}

// Root returns the cleaned data root.
func (c *Config) Root() string {
	return filepath.Clean(c.DataRoot)
}

// DefaultYAML returns a commented YAML string for init-config.
func DefaultYAML() string {
	return `# taskgate configuration
# Generated by: taskgate init-config

# Every operation reads and writes fixed paths under this directory.
data_root: /data

# Upper bound for external processes (setup script, formatter). 0 disables it.
exec_timeout: 0s

classifier:
  # false: keywords match case-sensitively. true: instruction and keywords
  # are lowercased before matching (also applies to the guard vocabulary).
  fold_case: false
  # Rules evaluated in order. First match wins. Leave empty for built-ins.
  # rules:
  #   - id: sort-contacts
  #     operation: sort_contacts
  #     all_of: ["sort", "contacts"]

guard:
  # YAML file with "traversal" and "destructive" lists that extend the
  # built-in vocabulary. ".." and "delete" are always checked.
  denylist: ""

operations:
  # Also sets the default count rule keyword ("count Wednesdays").
  weekday: Wednesday
  sum_category: Gold
  recent_logs: 10
  formatter: ["npx", "prettier@3.4.2", "--write"]
  setup:
    tool: uv
    install: ["pip", "install", "uv"]
    script: https://raw.githubusercontent.com/sanand0/tools-in-data-science-public/tds-2025-01/project-1/datagen.py
    identity_env: USER_EMAIL
    default_identity: user@example.com

read:
  # false confines /read to data_root.
  unrestricted: false

http:
  addr: ":8000"
  max_connections: 16

grpc:
  # 0 disables the gRPC listener.
  port: 0

logging:
  level: info     # debug | info | warn | error
  format: text    # text | json
  file: ""        # optional JSON log file
  journal: false  # also log to the systemd journal
`
}
