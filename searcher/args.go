package searcher

import (
	"errors"
	"fmt"
)

// Hyperparameters for MCTS that are not exposed as options

// InitQLoss is the virtual loss mixed into the initial Q of unvisited children.
const InitQLoss = 1.0

// MinShiftedLogit drops completed-Q entries whose max-subtracted logit is this small.
const MinShiftedLogit = -38.0

const (
	DefaultSimulations           = 16
	DefaultPUCTInit              = 1.25
	DefaultPUCTBase              = 19652
	DefaultRewardDiscount        = 1.0
	DefaultResignThreshold       = -0.9
	DefaultGumbelSampleSize      = 16
	DefaultGumbelSigmaVisitC     = 50
	DefaultGumbelSigmaScaleC     = 0.1
	DefaultSoftmaxTemperature    = 1.0
	DefaultSoftmaxValueThreshold = 0.1
	DefaultTreeCapacity          = 1024
)

// ActionSelection picks how the final action is decided after the search.
type ActionSelection int

const (
	SelectActionByCount ActionSelection = iota
	SelectActionBySoftmaxCount
)

func (a ActionSelection) String() string {
	switch a {
	case SelectActionByCount:
		return "count"
	case SelectActionBySoftmaxCount:
		return "softmax_count"
	default:
		return fmt.Sprintf("ActionSelection(%d)", int(a))
	}
}

func ParseActionSelection(s string) (ActionSelection, error) {
	switch s {
	case "count":
		return SelectActionByCount, nil
	case "softmax_count":
		return SelectActionBySoftmaxCount, nil
	default:
		return 0, fmt.Errorf("unknown action selection %q", s)
	}
}

type Config struct {
	NumSimulations        int
	PUCTInit              float64
	PUCTBase              float64
	RewardDiscount        float64
	ValueRescale          bool
	ResignThreshold       float64
	UseGumbel             bool
	GumbelSampleSize      int
	GumbelSigmaVisitC     float64
	GumbelSigmaScaleC     float64
	GumbelNoise           bool
	ActionSelection       ActionSelection
	SoftmaxTemperature    float64
	SoftmaxValueThreshold float64
	TreeCapacity          int
	Seed                  uint64
}

func DefaultConfig() Config {
	return Config{
		NumSimulations:        DefaultSimulations,
		PUCTInit:              DefaultPUCTInit,
		PUCTBase:              DefaultPUCTBase,
		RewardDiscount:        DefaultRewardDiscount,
		ResignThreshold:       DefaultResignThreshold,
		UseGumbel:             true,
		GumbelSampleSize:      DefaultGumbelSampleSize,
		GumbelSigmaVisitC:     DefaultGumbelSigmaVisitC,
		GumbelSigmaScaleC:     DefaultGumbelSigmaScaleC,
		ActionSelection:       SelectActionByCount,
		SoftmaxTemperature:    DefaultSoftmaxTemperature,
		SoftmaxValueThreshold: DefaultSoftmaxValueThreshold,
		TreeCapacity:          DefaultTreeCapacity,
	}
}

// Validate reports every option that the search cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.NumSimulations <= 0 {
		errs = append(errs, fmt.Errorf("num simulations must be positive, got %d", c.NumSimulations))
	}
	if c.PUCTBase <= 0 {
		errs = append(errs, fmt.Errorf("puct base must be positive, got %v", c.PUCTBase))
	}
	if c.GumbelSampleSize <= 0 {
		errs = append(errs, fmt.Errorf("gumbel sample size must be positive, got %d", c.GumbelSampleSize))
	}
	if c.SoftmaxTemperature <= 0 {
		errs = append(errs, fmt.Errorf("softmax temperature must be positive, got %v", c.SoftmaxTemperature))
	}
	if c.ActionSelection != SelectActionByCount && c.ActionSelection != SelectActionBySoftmaxCount {
		errs = append(errs, fmt.Errorf("unknown action selection %v", c.ActionSelection))
	}
	return errors.Join(errs...)
}

type Option func(c *Config)

func WithSimulations(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.NumSimulations = n
		}
	}
}

func WithPUCT(init, base float64) Option {
	return func(c *Config) {
		c.PUCTInit = init
		if base > 0 {
			c.PUCTBase = base
		}
	}
}

func WithRewardDiscount(discount float64) Option {
	return func(c *Config) {
		c.RewardDiscount = discount
	}
}

func WithValueRescale() Option {
	return func(c *Config) {
		c.ValueRescale = true
	}
}

func WithResignThreshold(threshold float64) Option {
	return func(c *Config) {
		c.ResignThreshold = threshold
	}
}

func WithGumbel(sampleSize int, sigmaVisitC, sigmaScaleC float64) Option {
	return func(c *Config) {
		if sampleSize > 0 {
			c.GumbelSampleSize = sampleSize
		}
		c.GumbelSigmaVisitC = sigmaVisitC
		c.GumbelSigmaScaleC = sigmaScaleC
	}
}

// WithoutGumbel searches the root with plain PUCT instead of sequential halving.
func WithoutGumbel() Option {
	return func(c *Config) {
		c.UseGumbel = false
	}
}

func WithGumbelNoise() Option {
	return func(c *Config) {
		c.GumbelNoise = true
	}
}

func WithSoftmaxCount(temperature float64) Option {
	return func(c *Config) {
		c.ActionSelection = SelectActionBySoftmaxCount
		if temperature > 0 {
			c.SoftmaxTemperature = temperature
		}
	}
}

func WithTreeCapacity(capacity int) Option {
	return func(c *Config) {
		if capacity > 0 {
			c.TreeCapacity = capacity
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

func NewConfig(options ...Option) Config {
	c := DefaultConfig()
	for _, option := range options {
		option(&c)
	}
	return c
}
