package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Veraticus/rfidgate/internal/common"
)

var validate = newValidator()

// newValidator reports fields by their mapstructure key so errors name the
// configuration key the operator has to fix.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Serial holds the reader connection settings.
type Serial struct {
	Port         string        `mapstructure:"port"`
	InitCommand  string        `mapstructure:"init_command"`
	Baud         int           `mapstructure:"baud" validate:"required,oneof=1200 2400 4800 9600 19200 38400 57600 115200"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	BufferSize   int           `mapstructure:"buffer_size" validate:"gte=2,lte=65536"`
	InitDelay    time.Duration `mapstructure:"init_delay" validate:"gte=0"`
}

// Session holds identifier registry settings.
type Session struct {
	Authorized   []string `mapstructure:"authorized" validate:"dive,required"`
	KeepRegistry bool     `mapstructure:"keep_registry"`
}

// Database holds the journal location.
type Database struct {
	Path string `mapstructure:"path" validate:"required"`
}

// Audit controls access journaling.
type Audit struct {
	Enabled bool `mapstructure:"enabled"`
}

// TUI holds presentation settings.
type TUI struct {
	Theme string `mapstructure:"theme" validate:"oneof=default minimal"`
}

// Logging holds log output settings.
type Logging struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
	File   string `mapstructure:"file"`
}

// Config is the complete application configuration.
type Config struct {
	Database Database `mapstructure:"database"`
	Logging  Logging  `mapstructure:"logging"`
	TUI      TUI      `mapstructure:"tui"`
	Session  Session  `mapstructure:"session"`
	Serial   Serial   `mapstructure:"serial"`
	Audit    Audit    `mapstructure:"audit"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baud", 9600)
	v.SetDefault("serial.read_timeout", 10*time.Millisecond)
	v.SetDefault("serial.poll_interval", 100*time.Millisecond)
	v.SetDefault("serial.buffer_size", 256)
	v.SetDefault("serial.init_command", "getRFIDMode")
	v.SetDefault("serial.init_delay", 2*time.Second)
	v.SetDefault("session.keep_registry", true)
	v.SetDefault("session.authorized", []string{})
	v.SetDefault("database.path", "~/.local/share/rfidgate/journal.db")
	v.SetDefault("audit.enabled", true)
	v.SetDefault("tui.theme", "default")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "~/.local/share/rfidgate/rfidgate.log")
}

// Load decodes v into a Config, expands paths and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Logging.File = ExpandPath(cfg.Logging.File)
	for i, id := range cfg.Session.Authorized {
		cfg.Session.Authorized[i] = strings.TrimSpace(id)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field against its constraints. The returned error
// wraps common.ErrInvalidConfig and names the offending keys.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s failed %q (got %v)", keyName(fe.Namespace()), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(problems, "; "))
}

// keyName strips the root struct from a namespace such as
// "Config.serial.buffer_size".
func keyName(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return rest
}
