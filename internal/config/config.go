// Package config provides Viper-based configuration loading for the MUD server.
package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the connection URL for pgx and golang-migrate. User and
// password are escaped.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// BoltConfig holds the embedded store settings.
type BoltConfig struct {
	// Path is the database file.
	Path string `mapstructure:"path"`
	// BackupDir receives backup copies of the database file.
	BackupDir string `mapstructure:"backup_dir"`
}

// Storage drivers.
const (
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
)

// StorageConfig selects and configures the object store.
type StorageConfig struct {
	// Driver is "bolt" or "postgres".
	Driver   string         `mapstructure:"driver"`
	Bolt     BoltConfig     `mapstructure:"bolt"`
	Database DatabaseConfig `mapstructure:"database"`
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// IdleTimeout is the duration of inactivity after which a connection is
	// closed.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

// Addr returns the "host:port" listen address.
func (t TelnetConfig) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// HealthConfig holds the gRPC health service settings.
type HealthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// Addr returns the "host:port" listen address.
func (h HealthConfig) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GameConfig holds simulation and session settings.
type GameConfig struct {
	// HomeID is the room new players start in and fall back to.
	HomeID int64 `mapstructure:"home_id"`
	// ActionDelay separates a command's reply from the room event it raises.
	ActionDelay time.Duration `mapstructure:"action_delay"`
	// RestartDelay is the default delay of !restart and !shutdown.
	RestartDelay time.Duration `mapstructure:"restart_delay"`
	// ANSIDefault is the colour preference of players who never set one.
	ANSIDefault bool `mapstructure:"ansi_default"`
	// WrapWidth is the column output is wrapped at. Zero disables wrapping.
	WrapWidth int `mapstructure:"wrap_width"`
	// Debug sends command errors to the player.
	Debug bool `mapstructure:"debug"`
	// MOTD is the file shown to new connections.
	MOTD string `mapstructure:"motd"`
	// Seed is the YAML world built on first start and by !fresh.
	Seed string `mapstructure:"seed"`
	// Scripts is the directory of Lua scripts for scripted mobs.
	Scripts string `mapstructure:"scripts"`
	// ScriptInstructionLimit bounds each script hook call.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
	// Admins are player names granted admin when their account is created.
	Admins []string `mapstructure:"admins"`
	// TimeScale is the number of virtual seconds per wall-clock second.
	TimeScale float64 `mapstructure:"time_scale"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Telnet  TelnetConfig  `mapstructure:"telnet"`
	Health  HealthConfig  `mapstructure:"health"`
	Storage StorageConfig `mapstructure:"storage"`
	Game    GameConfig    `mapstructure:"game"`
}

// Validate reports every invalid setting at once, each named by its key.
func (c Config) Validate() error {
	var p problems
	p.oneOf("logging.level", c.Logging.Level, "debug", "info", "warn", "error")
	p.oneOf("logging.format", c.Logging.Format, "json", "console")

	p.port("telnet.port", c.Telnet.Port)
	p.notNegative("telnet.read_timeout", c.Telnet.ReadTimeout)
	p.notNegative("telnet.write_timeout", c.Telnet.WriteTimeout)
	p.notNegative("telnet.idle_timeout", c.Telnet.IdleTimeout)
	if c.Health.Enabled {
		p.port("health.port", c.Health.Port)
	}

	switch c.Storage.Driver {
	case DriverBolt:
		p.required("storage.bolt.path", c.Storage.Bolt.Path)
		p.required("storage.bolt.backup_dir", c.Storage.Bolt.BackupDir)
	case DriverPostgres:
		c.Storage.Database.check(&p)
	default:
		p.oneOf("storage.driver", c.Storage.Driver, DriverBolt, DriverPostgres)
	}

	g := c.Game
	if g.HomeID < 1 {
		p.addf("game.home_id must be >= 1, got %d", g.HomeID)
	}
	p.notNegative("game.action_delay", g.ActionDelay)
	p.notNegative("game.restart_delay", g.RestartDelay)
	if g.WrapWidth != 0 && g.WrapWidth < 20 {
		p.addf("game.wrap_width must be 0 or >= 20, got %d", g.WrapWidth)
	}
	if g.TimeScale <= 0 {
		p.addf("game.time_scale must be positive, got %g", g.TimeScale)
	}
	if g.ScriptInstructionLimit < 0 {
		p.addf("game.script_instruction_limit must not be negative, got %d", g.ScriptInstructionLimit)
	}
	return p.err()
}

func (d DatabaseConfig) check(p *problems) {
	p.required("storage.database.host", d.Host)
	p.port("storage.database.port", d.Port)
	p.required("storage.database.user", d.User)
	p.required("storage.database.name", d.Name)
	p.oneOf("storage.database.sslmode", d.SSLMode, "disable", "require", "verify-ca", "verify-full")
	if d.MaxConns < 1 {
		p.addf("storage.database.max_conns must be >= 1, got %d", d.MaxConns)
	}
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		p.addf("storage.database.min_conns must be between 0 and max_conns (%d), got %d", d.MaxConns, d.MinConns)
	}
}

// problems collects validation failures.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p *problems) required(key, value string) {
	if value == "" {
		p.addf("%s must not be empty", key)
	}
}

func (p *problems) port(key string, port int) {
	if port < 1 || port > 65535 {
		p.addf("%s must be 1-65535, got %d", key, port)
	}
}

func (p *problems) notNegative(key string, d time.Duration) {
	if d < 0 {
		p.addf("%s must not be negative, got %s", key, d)
	}
}

func (p *problems) oneOf(key, value string, allowed ...string) {
	if !slices.Contains(allowed, value) {
		p.addf("%s must be one of [%s], got %q", key, strings.Join(allowed, ", "), value)
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(p, "; "))
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with TZ_ prefix
	v.SetEnvPrefix("TZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4444)
	v.SetDefault("telnet.read_timeout", "0s")
	v.SetDefault("telnet.write_timeout", "30s")
	v.SetDefault("telnet.idle_timeout", "30m")

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.host", "127.0.0.1")
	v.SetDefault("health.port", 4445)

	v.SetDefault("storage.driver", "bolt")
	v.SetDefault("storage.bolt.path", "var/db/tzmud.db")
	v.SetDefault("storage.bolt.backup_dir", "var/db/backup")
	v.SetDefault("storage.database.host", "localhost")
	v.SetDefault("storage.database.port", 5432)
	v.SetDefault("storage.database.user", "tzmud")
	v.SetDefault("storage.database.password", "tzmud")
	v.SetDefault("storage.database.name", "tzmud")
	v.SetDefault("storage.database.sslmode", "disable")
	v.SetDefault("storage.database.max_conns", 10)
	v.SetDefault("storage.database.min_conns", 2)
	v.SetDefault("storage.database.max_conn_lifetime", "1h")

	v.SetDefault("game.home_id", 1)
	v.SetDefault("game.action_delay", "100ms")
	v.SetDefault("game.restart_delay", "2s")
	v.SetDefault("game.ansi_default", false)
	v.SetDefault("game.wrap_width", 78)
	v.SetDefault("game.debug", false)
	v.SetDefault("game.motd", "content/motd.txt")
	v.SetDefault("game.seed", "content/world.yaml")
	v.SetDefault("game.scripts", "content/scripts")
	v.SetDefault("game.script_instruction_limit", 100000)
	v.SetDefault("game.time_scale", 1.0)
}
