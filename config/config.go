// Package config loads clinicctl's YAML configuration and contexts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName        = "clinicctl"
	ConfigFileName = "config"
	ConfigFileType = "yaml"
	EnvPrefix      = "CLINICCTL"

	DefaultContextName    = "default"
	DefaultServerEndpoint = "http://localhost:8080/api"
)

// Session storage backends.
const (
	BackendConfig = "config"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Context is one named backend plus the client-side storage kept for it.
type Context struct {
	Name           string            `mapstructure:"name" yaml:"name"`
	ServerEndpoint string            `mapstructure:"server_endpoint" yaml:"server_endpoint"`
	Storage        map[string]string `mapstructure:"storage" yaml:"storage,omitempty"`
}

// Has reports whether the context's storage holds key.
func (c *Context) Has(key string) bool {
	_, ok := c.Storage[normalize(key)]
	return ok
}

// CLIConfig holds the persisted contexts.
type CLIConfig struct {
	CurrentContext string              `mapstructure:"current_context" yaml:"current_context"`
	Contexts       map[string]*Context `mapstructure:"contexts" yaml:"contexts"`
}

// Settings are the runtime options. Each can come from the config file, a
// CLINICCTL_* environment variable or a flag, in increasing precedence.
type Settings struct {
	Server          string        `mapstructure:"server"`
	SessionBackend  string        `mapstructure:"session_backend"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPrefix     string        `mapstructure:"redis_prefix"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	Output          string        `mapstructure:"output"`
	Trace           bool          `mapstructure:"trace"`
	MetricsTextfile string        `mapstructure:"metrics_textfile"`
	AuditLog        string        `mapstructure:"audit_log"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

var defaults = map[string]interface{}{
	"server":           "",
	"session_backend":  BackendConfig,
	"redis_addr":       "localhost:6379",
	"redis_prefix":     AppName,
	"log_level":        "warn",
	"log_format":       "console",
	"output":           "table",
	"trace":            false,
	"metrics_textfile": "",
	"audit_log":        "",
	"timeout":          15 * time.Second,
}

// flagKeys maps flag names to setting keys.
var flagKeys = map[string]string{
	"server":           "server",
	"session-backend":  "session_backend",
	"redis-addr":       "redis_addr",
	"log-level":        "log_level",
	"log-format":       "log_format",
	"output":           "output",
	"trace":            "trace",
	"metrics-textfile": "metrics_textfile",
	"audit-log":        "audit_log",
	"timeout":          "timeout",
}

// Manager owns the config file.
type Manager struct {
	path   string
	v      *viper.Viper
	Config *CLIConfig
}

// DefaultPath returns $HOME/.clinicctl/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, "."+AppName, ConfigFileName+"."+ConfigFileType), nil
}

// Load reads the config file at path (DefaultPath when empty). A missing
// file is not an error; it is created on the first Save.
func Load(path string) (*Manager, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(ConfigFileType)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	cfg := &CLIConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, c := range cfg.Contexts {
		if c == nil {
			c = &Context{}
			cfg.Contexts[name] = c
		}
		if c.Name == "" {
			c.Name = name
		}
		if c.Storage == nil {
			c.Storage = make(map[string]string)
		}
	}

	return &Manager{path: path, v: v, Config: cfg}, nil
}

// Path returns the config file location.
func (m *Manager) Path() string { return m.path }

// BindFlags lets the given flags override the matching settings.
func (m *Manager) BindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := m.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Settings resolves the runtime settings.
func (m *Manager) Settings() (Settings, error) {
	var s Settings
	if err := m.v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	switch s.SessionBackend {
	case BackendConfig, BackendRedis, BackendMemory:
	default:
		return Settings{}, fmt.Errorf("unknown session backend %q (want %s, %s or %s)",
			s.SessionBackend, BackendConfig, BackendRedis, BackendMemory)
	}
	return s, nil
}

// normalize lowercases names, since viper reads map keys case-insensitively.
func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CurrentContext returns the active context. With no contexts configured at
// all, a "default" context pointing at DefaultServerEndpoint is created in
// memory and saved with the next Save.
func (m *Manager) CurrentContext() (*Context, error) {
	if len(m.Config.Contexts) == 0 {
		m.Config.Contexts[DefaultContextName] = &Context{
			Name:           DefaultContextName,
			ServerEndpoint: DefaultServerEndpoint,
			Storage:        make(map[string]string),
		}
		m.Config.CurrentContext = DefaultContextName
	}
	if m.Config.CurrentContext == "" {
		return nil, fmt.Errorf("no current context set. Use '%s config use-context <name>' or '%s config set-context ...'", AppName, AppName)
	}
	c, ok := m.Config.Contexts[normalize(m.Config.CurrentContext)]
	if !ok {
		return nil, fmt.Errorf("current context '%s' not found in configuration", m.Config.CurrentContext)
	}
	return c, nil
}

// SetContext creates or updates a context. The first context becomes current.
func (m *Manager) SetContext(name, server string) (*Context, error) {
	name = normalize(name)
	if name == "" {
		return nil, errors.New("context name is required")
	}
	if server == "" {
		return nil, errors.New("server endpoint is required")
	}
	c, ok := m.Config.Contexts[name]
	if !ok {
		c = &Context{Name: name, Storage: make(map[string]string)}
		m.Config.Contexts[name] = c
	}
	if c.ServerEndpoint != server {
		// A different backend does not know the stored session.
		c.Storage = make(map[string]string)
	}
	c.ServerEndpoint = server
	if len(m.Config.Contexts) == 1 || m.Config.CurrentContext == "" {
		m.Config.CurrentContext = name
	}
	return c, m.Save()
}

// UseContext switches the current context.
func (m *Manager) UseContext(name string) error {
	name = normalize(name)
	if _, ok := m.Config.Contexts[name]; !ok {
		return fmt.Errorf("context '%s' not found", name)
	}
	m.Config.CurrentContext = name
	return m.Save()
}

// DeleteContext removes a context. Removing the current one unsets it.
func (m *Manager) DeleteContext(name string) error {
	name = normalize(name)
	if _, ok := m.Config.Contexts[name]; !ok {
		return fmt.Errorf("context '%s' not found", name)
	}
	delete(m.Config.Contexts, name)
	if normalize(m.Config.CurrentContext) == name {
		m.Config.CurrentContext = ""
	}
	return m.Save()
}

// ContextNames returns the context names in order.
func (m *Manager) ContextNames() []string {
	names := make([]string, 0, len(m.Config.Contexts))
	for name := range m.Config.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save writes the contexts back to the config file, preserving any other
// keys the file holds. The file is readable by its owner only since it may
// hold a session.
func (m *Manager) Save() error {
	settings := map[string]interface{}{}
	if _, err := os.Stat(m.path); err == nil {
		onDisk := viper.New()
		onDisk.SetConfigFile(m.path)
		onDisk.SetConfigType(ConfigFileType)
		if err := onDisk.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", m.path, err)
		}
		settings = onDisk.AllSettings()
	}

	contexts := make(map[string]interface{}, len(m.Config.Contexts))
	for name, c := range m.Config.Contexts {
		storage := make(map[string]interface{}, len(c.Storage))
		for k, val := range c.Storage {
			storage[k] = val
		}
		contexts[name] = map[string]interface{}{
			"name":            c.Name,
			"server_endpoint": c.ServerEndpoint,
			"storage":         storage,
		}
	}
	settings["current_context"] = m.Config.CurrentContext
	settings["contexts"] = contexts

	// A fresh instance so values removed from memory do not survive in the
	// file layer of m.v.
	out := viper.New()
	out.SetConfigType(ConfigFileType)
	for k, val := range settings {
		out.Set(k, val)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", filepath.Dir(m.path), err)
	}
	if err := out.WriteConfigAs(m.path); err != nil {
		return fmt.Errorf("failed to save config to %s: %w", m.path, err)
	}
	if err := os.Chmod(m.path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict config file permissions: %w", err)
	}
	return nil
}
