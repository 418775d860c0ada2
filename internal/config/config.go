package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"maskfield/internal/logging"
	"maskfield/internal/mask"
)

// Config holds all configuration options.
type Config struct {
	KeyBindings KeyBindings    `yaml:"keybindings" mapstructure:"keybindings"`
	Fields      []FieldConfig  `yaml:"fields" mapstructure:"fields"`
	Logging     logging.Config `yaml:"logging" mapstructure:"logging"`
	Output      OutputConfig   `yaml:"output" mapstructure:"output"`
}

// KeyBindings defines keyboard shortcuts for the form.
type KeyBindings struct {
	Quit      string `yaml:"quit" mapstructure:"quit"`
	NextField string `yaml:"next_field" mapstructure:"next_field"`
	PrevField string `yaml:"prev_field" mapstructure:"prev_field"`
	ToggleTab string `yaml:"toggle_tab" mapstructure:"toggle_tab"`
	Submit    string `yaml:"submit" mapstructure:"submit"`
}

// FieldConfig describes one input of the form.
type FieldConfig struct {
	Label           string `yaml:"label" mapstructure:"label"`
	Placeholder     string `yaml:"placeholder,omitempty" mapstructure:"placeholder"`
	MaskType        string `yaml:"mask_type,omitempty" mapstructure:"mask_type"`
	Mask            string `yaml:"mask,omitempty" mapstructure:"mask"`
	CurrencyDivider string `yaml:"currency_divider,omitempty" mapstructure:"currency_divider"`
	IsFocused       *bool  `yaml:"is_focused,omitempty" mapstructure:"is_focused"`
	Value           string `yaml:"value,omitempty" mapstructure:"value"`
	Secure          bool   `yaml:"secure,omitempty" mapstructure:"secure"`
	Width           int    `yaml:"width,omitempty" mapstructure:"width"`
}

// OutputConfig says where submissions are recorded.
type OutputConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// MaskOptions converts the masking settings of a field.
func (f FieldConfig) MaskOptions() (mask.Options, error) {
	t, err := mask.ParseMaskType(f.MaskType)
	if err != nil {
		return mask.Options{}, err
	}
	return mask.Options{MaskType: t, Mask: f.Mask, CurrencyDivider: f.CurrencyDivider}, nil
}

// DefaultConfig returns a Config with default keybindings and a sample form.
func DefaultConfig() Config {
	return Config{
		KeyBindings: DefaultKeyBindings(),
		Fields:      DefaultFields(),
		Logging:     logging.DefaultConfig(),
		Output:      OutputConfig{Path: filepath.Join(dataDir(), "submissions.yaml")},
	}
}

// DefaultKeyBindings returns the built-in shortcuts.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Quit:      "ctrl+c",
		NextField: "tab",
		PrevField: "shift+tab",
		ToggleTab: "ctrl+o",
		Submit:    "ctrl+s",
	}
}

// DefaultFields returns a sample form exercising every mask type.
func DefaultFields() []FieldConfig {
	return []FieldConfig{
		{Label: "Name"},
		{Label: "Phone", MaskType: string(mask.MaskPhone), Mask: mask.DefaultPattern(mask.MaskPhone)},
		{Label: "Birthday", MaskType: string(mask.MaskDate), Mask: mask.DefaultPattern(mask.MaskDate)},
		{Label: "Card number", MaskType: string(mask.MaskCard), Mask: mask.DefaultPattern(mask.MaskCard)},
		{Label: "Amount", MaskType: string(mask.MaskCurrency), CurrencyDivider: ","},
		{Label: "PIN", Secure: true},
	}
}

// Validate checks the mask settings of every field.
func (c Config) Validate() error {
	var errs []error
	for i, f := range c.Fields {
		if strings.TrimSpace(f.Label) == "" {
			errs = append(errs, fmt.Errorf("field %d: label is required", i+1))
			continue
		}
		opts, err := f.MaskOptions()
		if err == nil {
			_, err = mask.NewSpec(opts)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("field %d (%s): %w", i+1, f.Label, err))
		}
	}
	return errors.Join(errs...)
}

// configDir returns the directory holding config.yaml.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "maskfield")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "maskfield")
}

// dataDir returns the directory for recorded submissions.
func dataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "maskfield")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "maskfield")
}

// DefaultPath returns the path to the config file.
func DefaultPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Manager loads the configuration and reloads it when the file changes.
type Manager struct {
	mu        sync.RWMutex
	viper     *viper.Viper
	config    Config
	callbacks []func(Config)
	watching  bool
}

// NewManager creates a manager for the file at path, or for config.yaml in the
// default config directory when path is empty.
func NewManager(path string) *Manager {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir := configDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("MASKFIELD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	m := &Manager{viper: v, config: DefaultConfig()}
	m.setDefaults()
	return m
}

func (m *Manager) setDefaults() {
	defaults := DefaultConfig()
	m.viper.SetDefault("keybindings.quit", defaults.KeyBindings.Quit)
	m.viper.SetDefault("keybindings.next_field", defaults.KeyBindings.NextField)
	m.viper.SetDefault("keybindings.prev_field", defaults.KeyBindings.PrevField)
	m.viper.SetDefault("keybindings.toggle_tab", defaults.KeyBindings.ToggleTab)
	m.viper.SetDefault("keybindings.submit", defaults.KeyBindings.Submit)
	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.file", defaults.Logging.File)
	m.viper.SetDefault("output.path", defaults.Output.Path)
}

// Load reads the config file and environment. A missing file leaves the
// defaults in place.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := m.unmarshal()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

func (m *Manager) unmarshal() (Config, error) {
	var cfg Config
	if err := m.viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// normalize fills anything left empty with the default value.
func normalize(cfg *Config) {
	defaults := DefaultConfig()
	kb := &cfg.KeyBindings
	if kb.Quit == "" {
		kb.Quit = defaults.KeyBindings.Quit
	}
	if kb.NextField == "" {
		kb.NextField = defaults.KeyBindings.NextField
	}
	if kb.PrevField == "" {
		kb.PrevField = defaults.KeyBindings.PrevField
	}
	if kb.ToggleTab == "" {
		kb.ToggleTab = defaults.KeyBindings.ToggleTab
	}
	if kb.Submit == "" {
		kb.Submit = defaults.KeyBindings.Submit
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = defaults.Fields
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = defaults.Output.Path
	}
}

// Config returns the current configuration.
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// FileUsed returns the config file that was read, if any.
func (m *Manager) FileUsed() string {
	return m.viper.ConfigFileUsed()
}

// OnConfigChange registers a callback for reloaded configuration.
func (m *Manager) OnConfigChange(callback func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// Watch reloads the configuration whenever the file changes. Invalid edits are
// reported to onError and the previous configuration is kept.
func (m *Manager) Watch(onError func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return
	}
	if _, err := os.Stat(m.viper.ConfigFileUsed()); err != nil {
		return
	}

	m.viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		m.reload(onError)
	})
	m.viper.WatchConfig()
	m.watching = true
}

func (m *Manager) reload(onError func(error)) {
	m.mu.Lock()
	cfg, err := m.unmarshal()
	if err != nil {
		m.mu.Unlock()
		if onError != nil {
			onError(err)
		}
		return
	}
	m.config = cfg
	callbacks := make([]func(Config), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, callback := range callbacks {
		callback(cfg)
	}
}

// Load is a shortcut for NewManager(path) followed by Load.
func Load(path string) (Config, error) {
	m := NewManager(path)
	if err := m.Load(); err != nil {
		return DefaultConfig(), err
	}
	return m.Config(), nil
}

// SaveDefaultConfig creates a default config file at path if it doesn't exist.
func SaveDefaultConfig(path string) (bool, error) {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return false, errors.New("no config path available")
	}

	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return false, fmt.Errorf("encode default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
