package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lotpad/internal/parking"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Storage drivers.
const (
	DriverFS     = "fs"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	Auth    AuthConfig        `yaml:"auth"`
	Events  EventsConfig      `yaml:"events"`
	Lot     LotConfig         `yaml:"lot"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
		return err
	}
	return c.Lot.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects where documents are persisted.
//
// Driver is one of:
//   - "fs" (default): one file per document under Path.
//   - "sqlite": a single database file at SQLitePath.
//   - "memory": nothing is persisted across restarts.
type StorageConfig struct {
	Driver     string `yaml:"driver"`
	Path       string `yaml:"path"`
	SQLitePath string `yaml:"sqlite_path"`

	// Watch reports external changes under Path (fs driver only).
	Watch     bool   `yaml:"watch"`
	Extension string `yaml:"extension"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = DriverFS
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverFS, DriverSQLite, DriverMemory)),
		validation.Field(&c.Path, validation.When(c.Driver == DriverFS, validation.Required)),
		validation.Field(&c.SQLitePath, validation.When(c.Driver == DriverSQLite, validation.Required)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// EventsConfig tunes the SSE stream.
type EventsConfig struct {
	// FilesThrottle is the minimum gap between files.changed events.
	FilesThrottle time.Duration `yaml:"files_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FilesThrottle, validation.Min(time.Duration(0))),
	)
}

// LotConfig describes the simulated parking lot.
//
// Policy decides what happens when a car arrives at a full lot or leaves an
// empty one: "absorb" ignores the call, "strict" reports an error.
type LotConfig struct {
	Name        string         `yaml:"name"`
	Capacity    int            `yaml:"capacity"`
	Policy      parking.Policy `yaml:"policy"`
	FillMax     time.Duration  `yaml:"fill_max"`
	EmptyMax    time.Duration  `yaml:"empty_max"`
	InitialFill time.Duration  `yaml:"initial_fill"`

	// Simulate runs the simulation inside serve, streaming lot.* events.
	Simulate bool `yaml:"simulate"`
}

// Validate validates the lot configuration.
func (c *LotConfig) Validate() error {
	if c.Policy == "" {
		c.Policy = parking.PolicyAbsorb
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.Policy, validation.In(parking.PolicyAbsorb, parking.PolicyStrict)),
		validation.Field(&c.FillMax, validation.Min(time.Duration(0))),
		validation.Field(&c.EmptyMax, validation.Min(time.Duration(0))),
		validation.Field(&c.InitialFill, validation.Min(time.Duration(0))),
	)
}

// SimConfig converts the timings for parking.Simulate.
func (c *LotConfig) SimConfig() parking.SimConfig {
	return parking.SimConfig{
		FillMax:     c.FillMax,
		EmptyMax:    c.EmptyMax,
		InitialFill: c.InitialFill,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	sim := parking.DefaultSimConfig()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			Driver:     DriverFS,
			Path:       "./files",
			SQLitePath: "./lotpad.db",
			Watch:      true,
			Extension:  ".txt",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Events: EventsConfig{
			FilesThrottle: 2 * time.Second,
		},
		Lot: LotConfig{
			Name:        "Bahnhof Parking",
			Capacity:    100,
			Policy:      parking.PolicyAbsorb,
			FillMax:     sim.FillMax,
			EmptyMax:    sim.EmptyMax,
			InitialFill: sim.InitialFill,
		},
	}
}
