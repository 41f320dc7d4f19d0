package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/urdfsim/internal/dynamo"
	"github.com/san-kum/urdfsim/internal/physics"
)

const (
	DefaultIntegrator   = "rk45"
	DefaultStart        = 0.0
	DefaultEnd          = 20.0
	DefaultInitialState = "0, 0, 0, 0, 0, 0, 0, 0, 0"
	DefaultRTol         = 1e-3
	DefaultATol         = 1e-6
	DefaultMaxSteps     = 100000
	DefaultSubsteps     = 10
)

var ErrInitialState = errors.New("config: invalid initial state")

type Config struct {
	Document       string            `yaml:"document"`
	Integrator     string            `yaml:"integrator"`
	Start          float64           `yaml:"start"`
	End            float64           `yaml:"end"`
	Samples        int               `yaml:"samples"`
	InitialState   string            `yaml:"initial_state"`
	RTol           float64           `yaml:"rtol"`
	ATol           float64           `yaml:"atol"`
	MaxSteps       int               `yaml:"max_steps"`
	StepsPerSample int               `yaml:"steps_per_sample"`
	Environment    EnvironmentConfig `yaml:"environment"`
}

// EnvironmentConfig holds per-axis drag and torque coefficients and the
// constant thrust force.
type EnvironmentConfig struct {
	Drag   [3]float64 `yaml:"drag"`
	Torque [3]float64 `yaml:"torque"`
	Thrust [3]float64 `yaml:"thrust"`
}

func DefaultConfig() *Config {
	env := physics.DefaultEnvironment()
	return &Config{
		Integrator:     DefaultIntegrator,
		Start:          DefaultStart,
		End:            DefaultEnd,
		Samples:        dynamo.DefaultSamples,
		InitialState:   DefaultInitialState,
		RTol:           DefaultRTol,
		ATol:           DefaultATol,
		MaxSteps:       DefaultMaxSteps,
		StepsPerSample: DefaultSubsteps,
		Environment: EnvironmentConfig{
			Drag:   [3]float64{env.Drag.X, env.Drag.Y, env.Drag.Z},
			Torque: [3]float64{env.Torque.X, env.Torque.Y, env.Torque.Z},
			Thrust: [3]float64{env.Thrust.X, env.Thrust.Y, env.Thrust.Z},
		},
	}
}

// Load reads a YAML config on top of the defaults, so omitted keys keep
// their default values.
func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads a YAML config on top of base, which is modified and
// returned.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ParseInitialState reads a comma separated list of exactly nine numbers,
// in the order x, y, z, vx, vy, vz, wx, wy, wz.
func ParseInitialState(s string) (dynamo.State, error) {
	fields := strings.Split(s, ",")
	if len(fields) != physics.StateDim {
		return nil, fmt.Errorf("%w: want %d values, got %d", ErrInitialState, physics.StateDim, len(fields))
	}

	state := make(dynamo.State, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: component %d: %q is not a number", ErrInitialState, i, strings.TrimSpace(f))
		}
		state[i] = v
	}
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: values must be finite", ErrInitialState)
	}
	return state, nil
}

// FormatState renders a state the way ParseInitialState reads it.
func FormatState(x dynamo.State) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func (c *Config) GetInitState() (dynamo.State, error) {
	return ParseInitialState(c.InitialState)
}

func (c *Config) Env() physics.Environment {
	return physics.NewEnvironment(c.Environment.Drag, c.Environment.Torque, c.Environment.Thrust)
}

// SimConfig converts the file settings into integrator settings. Whether the
// run is adaptive is decided by the chosen stepper.
func (c *Config) SimConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Start = c.Start
	cfg.End = c.End
	cfg.Samples = c.Samples
	cfg.Tolerance = dynamo.Tolerance{RTol: c.RTol, ATol: c.ATol}
	cfg.MaxSteps = c.MaxSteps
	cfg.StepsPerSample = c.StepsPerSample
	return cfg
}

// Validate checks everything that can be checked without the document.
func (c *Config) Validate() error {
	if _, err := c.GetInitState(); err != nil {
		return err
	}
	sc := c.SimConfig()
	if err := sc.Validate(); err != nil {
		return err
	}
	sc.Adaptive = false
	return sc.Validate()
}
