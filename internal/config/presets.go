package config

import "sort"

type Preset struct {
	Description string
	Config      *Config
}

var Presets = map[string]Preset{
	"default": {
		Description: "thrust [10 5 0], drag [0.1 0.1 0.2], from rest over 20s",
		Config:      DefaultConfig(),
	},
	"coast": {
		Description: "no thrust, moving start decays under drag",
		Config: with(func(c *Config) {
			c.Environment.Thrust = [3]float64{}
			c.InitialState = "0, 0, 0, 5, 2, 0, 0.5, 0, 0.2"
		}),
	},
	"still": {
		Description: "no forcing at all, the state stays constant",
		Config: with(func(c *Config) {
			c.Environment = EnvironmentConfig{}
		}),
	},
	"heavy_drag": {
		Description: "default thrust against ten times the drag",
		Config: with(func(c *Config) {
			c.Environment.Drag = [3]float64{1.0, 1.0, 2.0}
			c.Environment.Torque = [3]float64{0.5, 0.5, 0.5}
		}),
	},
}

func with(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p.Config
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
