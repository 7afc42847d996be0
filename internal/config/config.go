package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the aevum client and the alarm store daemon.
type Config struct {
	// ServerAddress is the gRPC address of the alarm store.
	ServerAddress string `yaml:"server_addr" env:"SERVER_ADDR"`
	// Timeout bounds every alarm store RPC issued by the client.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// Storage selects the daemon persistence backend: "file" or "sqlite".
	Storage string `yaml:"storage" env:"STORAGE"`
	// StateFile is the JSON file used by the "file" storage backend.
	StateFile string `yaml:"state_file" env:"STATE_FILE"`
	// Database is the SQLite database used by the "sqlite" storage backend.
	Database string `yaml:"database" env:"DATABASE"`
	// LogLevel is the minimum level of emitted log messages.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	// LogFile is where the client writes its logs; the terminal belongs to the UI.
	LogFile string `yaml:"log_file" env:"LOG_FILE"`

	Colors Colors `yaml:"colors" envPrefix:"COLOR_"`
	Input  Input  `yaml:"input" envPrefix:"INPUT_"`
	Audio  Audio  `yaml:"audio" envPrefix:"AUDIO_"`
}

// Colors are the UI colours as #rrggbb strings.
type Colors struct {
	Background    string `yaml:"background" env:"BACKGROUND"`
	AltBackground string `yaml:"alt_background" env:"ALT_BACKGROUND"`
	Foreground    string `yaml:"foreground" env:"FOREGROUND"`
}

// Input tunes touch handling and scroll physics.
type Input struct {
	// VelocityInterval is the length of one friction tick in milliseconds.
	VelocityInterval uint16 `yaml:"velocity_interval" env:"VELOCITY_INTERVAL"`
	// VelocityFriction is the per-tick velocity decay factor, strictly inside (0, 1).
	VelocityFriction float64 `yaml:"velocity_friction" env:"VELOCITY_FRICTION"`
	// MaxTapDistance is the squared distance a touch may travel before it turns into a drag.
	MaxTapDistance float64 `yaml:"max_tap_distance" env:"MAX_TAP_DISTANCE"`
	// QuickMinutes1 is the interval added by the left quick-add button.
	QuickMinutes1 uint16 `yaml:"quick_minutes_1" env:"QUICK_MINUTES_1"`
	// QuickMinutes2 is the interval added by the right quick-add button.
	QuickMinutes2 uint16 `yaml:"quick_minutes_2" env:"QUICK_MINUTES_2"`
}

// Audio tunes the alarm sound.
type Audio struct {
	// ClipLength truncates the embedded alarm clip before it is looped.
	ClipLength time.Duration `yaml:"clip_length" env:"CLIP_LENGTH"`
	// Volume is the output volume percentage requested before ringing.
	Volume uint8 `yaml:"volume" env:"VOLUME"`
}

const (
	// DefaultConfigFilename is the default filename for aevum settings.
	DefaultConfigFilename = "aevum.yaml"

	// DefaultServerAddress is where the alarm store daemon listens by default.
	DefaultServerAddress = "127.0.0.1:50710"

	// DefaultStateFilename is the default filename for the alarm JSON state.
	DefaultStateFilename = "aevum-alarms.json"

	// DefaultDatabaseFilename is the default SQLite database filename.
	DefaultDatabaseFilename = "aevum-alarms.db"

	// DefaultTimeout is the default duration for alarm store RPCs.
	DefaultTimeout = 5 * time.Second

	// DefaultClipLength keeps the looped alarm sound short enough to repeat well.
	DefaultClipLength = 1500 * time.Millisecond

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// StorageFile persists alarms as a JSON document.
	StorageFile = "file"
	// StorageSQLite persists alarms in a SQLite database.
	StorageSQLite = "sqlite"

	// envPrefix namespaces environment overrides.
	envPrefix = "AEVUM_"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errInvalidFriction is returned when the velocity friction is outside (0, 1).
	errInvalidFriction = errors.New("velocity friction must be strictly between 0 and 1")
	// errInvalidInterval is returned for a zero velocity tick interval.
	errInvalidInterval = errors.New("velocity interval must be positive")
	// errInvalidColor is returned for colours that are not #rrggbb.
	errInvalidColor = errors.New("colour must be formatted as #rrggbb")
	// errUnknownStorage is returned for an unsupported storage backend.
	errUnknownStorage = errors.New("unknown storage backend")
	// errInvalidVolume is returned for volume percentages above 100.
	errInvalidVolume = errors.New("volume must be between 0 and 100")

	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// Default returns the built-in settings used when no file exists.
func Default() *Config {
	return &Config{
		ServerAddress: DefaultServerAddress,
		Timeout:       DefaultTimeout,
		Storage:       StorageFile,
		StateFile:     DefaultStateFilename,
		Database:      DefaultDatabaseFilename,
		LogLevel:      "info",
		Colors: Colors{
			Background:    "#181818",
			AltBackground: "#282828",
			Foreground:    "#ffffff",
		},
		Input: Input{
			VelocityInterval: 30,
			VelocityFriction: 0.85,
			MaxTapDistance:   1,
			QuickMinutes1:    90,
			QuickMinutes2:    8 * 60,
		},
		Audio: Audio{
			ClipLength: DefaultClipLength,
			Volume:     100,
		},
	}
}

// Load reads configuration from the provided path, applies AEVUM_* environment
// overrides and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err := yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Keep defaults.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields, fills zero values with defaults and
// rejects values the scroll physics or the audio controller cannot handle.
//
//nolint:cyclop // Flat list of independent checks.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.StateFile == "" {
		settings.StateFile = DefaultStateFilename
	}

	if settings.Database == "" {
		settings.Database = DefaultDatabaseFilename
	}

	switch settings.Storage {
	case "":
		settings.Storage = StorageFile
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("%w: %q", errUnknownStorage, settings.Storage)
	}

	if settings.Input.VelocityInterval == 0 {
		return errInvalidInterval
	}

	if f := settings.Input.VelocityFriction; f <= 0 || f >= 1 {
		return fmt.Errorf("%w: %v", errInvalidFriction, f)
	}

	for _, color := range []string{
		settings.Colors.Background,
		settings.Colors.AltBackground,
		settings.Colors.Foreground,
	} {
		if !colorPattern.MatchString(color) {
			return fmt.Errorf("%w: %q", errInvalidColor, color)
		}
	}

	if settings.Audio.ClipLength <= 0 {
		settings.Audio.ClipLength = DefaultClipLength
	}

	if settings.Audio.Volume > 100 {
		return errInvalidVolume
	}

	return nil
}
