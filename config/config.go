// Package config loads agent settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gumbelzero/searcher"

	"gopkg.in/yaml.v3"
)

const DefaultRollouts = 8

// Agent is everything needed to build one searching agent.
type Agent struct {
	Search   searcher.Config
	Rollouts int // Random playouts per oracle call
	Cutoff   int // Playout depth limit, 0 for none
}

func Default() Agent {
	return Agent{Search: searcher.DefaultConfig(), Rollouts: DefaultRollouts}
}

// file mirrors Agent with the keys used on disk.
type file struct {
	NumSimulations        int     `yaml:"num_simulations"`
	PUCTInit              float64 `yaml:"puct_init"`
	PUCTBase              float64 `yaml:"puct_base"`
	RewardDiscount        float64 `yaml:"reward_discount"`
	ValueRescale          bool    `yaml:"value_rescale"`
	ResignThreshold       float64 `yaml:"resign_threshold"`
	UseGumbel             bool    `yaml:"use_gumbel"`
	GumbelSampleSize      int     `yaml:"gumbel_sample_size"`
	GumbelSigmaVisitC     float64 `yaml:"gumbel_sigma_visit_c"`
	GumbelSigmaScaleC     float64 `yaml:"gumbel_sigma_scale_c"`
	GumbelNoise           bool    `yaml:"gumbel_noise"`
	ActionSelection       string  `yaml:"action_selection"`
	SoftmaxTemperature    float64 `yaml:"softmax_temperature"`
	SoftmaxValueThreshold float64 `yaml:"softmax_value_threshold"`
	TreeCapacity          int     `yaml:"tree_capacity"`
	Seed                  uint64  `yaml:"seed"`
	Rollouts              int     `yaml:"rollouts"`
	Cutoff                int     `yaml:"cutoff"`
}

func toFile(a Agent) file {
	c := a.Search
	return file{
		NumSimulations:        c.NumSimulations,
		PUCTInit:              c.PUCTInit,
		PUCTBase:              c.PUCTBase,
		RewardDiscount:        c.RewardDiscount,
		ValueRescale:          c.ValueRescale,
		ResignThreshold:       c.ResignThreshold,
		UseGumbel:             c.UseGumbel,
		GumbelSampleSize:      c.GumbelSampleSize,
		GumbelSigmaVisitC:     c.GumbelSigmaVisitC,
		GumbelSigmaScaleC:     c.GumbelSigmaScaleC,
		GumbelNoise:           c.GumbelNoise,
		ActionSelection:       c.ActionSelection.String(),
		SoftmaxTemperature:    c.SoftmaxTemperature,
		SoftmaxValueThreshold: c.SoftmaxValueThreshold,
		TreeCapacity:          c.TreeCapacity,
		Seed:                  c.Seed,
		Rollouts:              a.Rollouts,
		Cutoff:                a.Cutoff,
	}
}

func (f file) toAgent() (Agent, error) {
	selection, err := searcher.ParseActionSelection(f.ActionSelection)
	if err != nil {
		return Agent{}, err
	}
	return Agent{
		Search: searcher.Config{
			NumSimulations:        f.NumSimulations,
			PUCTInit:              f.PUCTInit,
			PUCTBase:              f.PUCTBase,
			RewardDiscount:        f.RewardDiscount,
			ValueRescale:          f.ValueRescale,
			ResignThreshold:       f.ResignThreshold,
			UseGumbel:             f.UseGumbel,
			GumbelSampleSize:      f.GumbelSampleSize,
			GumbelSigmaVisitC:     f.GumbelSigmaVisitC,
			GumbelSigmaScaleC:     f.GumbelSigmaScaleC,
			GumbelNoise:           f.GumbelNoise,
			ActionSelection:       selection,
			SoftmaxTemperature:    f.SoftmaxTemperature,
			SoftmaxValueThreshold: f.SoftmaxValueThreshold,
			TreeCapacity:          f.TreeCapacity,
			Seed:                  f.Seed,
		},
		Rollouts: f.Rollouts,
		Cutoff:   f.Cutoff,
	}, nil
}

// Load reads a YAML file onto the defaults. Keys left out keep their default
// value and unknown keys are rejected.
func Load(path string) (Agent, error) {
	f, err := os.Open(path)
	if err != nil {
		return Agent{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	a, err := Decode(f)
	if err != nil {
		return Agent{}, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return a, nil
}

func Decode(r io.Reader) (Agent, error) {
	out := toFile(Default())
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return Agent{}, fmt.Errorf("failed to decode config: %w", err)
	}

	a, err := out.toAgent()
	if err != nil {
		return Agent{}, err
	}
	if err := a.Validate(); err != nil {
		return Agent{}, err
	}
	return a, nil
}

func (a Agent) Validate() error {
	var errs []error
	if err := a.Search.Validate(); err != nil {
		errs = append(errs, err)
	}
	if a.Rollouts <= 0 {
		errs = append(errs, fmt.Errorf("rollouts must be positive, got %d", a.Rollouts))
	}
	if a.Cutoff < 0 {
		errs = append(errs, fmt.Errorf("cutoff must not be negative, got %d", a.Cutoff))
	}
	return errors.Join(errs...)
}

// Write stores a as YAML, every key included.
func Write(w io.Writer, a Agent) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	if err := encoder.Encode(toFile(a)); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
