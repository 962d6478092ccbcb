// Package config provides configuration loading and access for an evolution run.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all run configuration parameters.
type Config struct {
	Car        CarConfig        `yaml:"car"`
	Genetic    GeneticConfig    `yaml:"genetic"`
	Simulation SimulationConfig `yaml:"simulation"`
	Obstacles  ObstacleConfig   `yaml:"obstacles"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Viewer     ViewerConfig     `yaml:"viewer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// CarConfig holds the car's control limits and the goal line.
type CarConfig struct {
	MaxAcceleration int     `yaml:"max_acceleration"` // Genes are integers in [-max, max] before scaling
	SlowdownFactor  float64 `yaml:"slowdown_factor"`  // Scale applied to every sampled gene
	MaxDistance     float64 `yaml:"max_distance"`     // Goal line on the x-axis
}

// GeneticConfig holds population and operator parameters.
type GeneticConfig struct {
	PopulationSize       int     `yaml:"population_size"`
	GenerationCount      int     `yaml:"generation_count"`
	RemoveProportion     float64 `yaml:"remove_proportion"`     // Share of the population replaced by selection
	CrossoverProbability float64 `yaml:"crossover_probability"` // Share of the population paired for crossover
	MutationProbability  float64 `yaml:"mutation_probability"`  // Share of all genes rewritten per generation
	Selection            string  `yaml:"selection"`             // elite_replace, roulette_wheel, elite_replace_reseed, modified_sort
	Fitness              string  `yaml:"fitness"`               // distance, time_penalty, collision_aware
	TimePenalty          float64 `yaml:"time_penalty"`          // Coefficient for the time-penalized fitness modes
}

// SimulationConfig holds frame and reproducibility settings.
type SimulationConfig struct {
	FrameCount int   `yaml:"frame_count"`
	RandomSeed int64 `yaml:"random_seed"`
	Workers    int   `yaml:"workers"` // Parallel genome evaluators (0 = GOMAXPROCS)
}

// ObstacleConfig holds the obstacle field geometry.
type ObstacleConfig struct {
	Count        int     `yaml:"count"`
	BlockWidth   float64 `yaml:"block_width"`
	BlockHeight  float64 `yaml:"block_height"`
	RadiusFactor float64 `yaml:"radius_factor"` // Collision radius = block_height * radius_factor
	AxisOffset   float64 `yaml:"axis_offset"`   // Back wall sits at -axis_offset
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow        int `yaml:"perf_window"`        // Generations averaged by the perf collector
	StagnationWindows int `yaml:"stagnation_windows"` // Generations without improvement before a stagnation milestone
}

// ViewerConfig holds animation window settings.
type ViewerConfig struct {
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	TargetFPS    int `yaml:"target_fps"`
	AnimateEvery int `yaml:"animate_every"` // Animate every N-th generation plus the last one
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	CarRadius float64 // Obstacles.BlockHeight * Obstacles.RadiusFactor
	MinGene   float64 // -MaxAcceleration * SlowdownFactor
	MaxGene   float64 // MaxAcceleration * SlowdownFactor
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ComputeDerived()

	return cfg, nil
}

// ComputeDerived recalculates values derived from the loaded config.
// Call it again after mutating fields in code.
func (c *Config) ComputeDerived() {
	c.Derived.CarRadius = c.Obstacles.BlockHeight * c.Obstacles.RadiusFactor
	c.Derived.MaxGene = float64(c.Car.MaxAcceleration) * c.Car.SlowdownFactor
	c.Derived.MinGene = -c.Derived.MaxGene
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
