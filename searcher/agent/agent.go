package agent

import (
	"errors"
	"fmt"

	"gumbelzero/experiments/metrics"
	"gumbelzero/game"
	"gumbelzero/searcher"

	"github.com/rs/zerolog/log"
)

var (
	ErrTerminalState = errors.New("cannot search from a terminal state")
	ErrNoCandidates  = errors.New("oracle returned no candidates for the root")
)

// Decision is the outcome of one search.
type Decision struct {
	Action             game.Action
	Resign             bool
	SearchDistribution string
	CompletedPolicy    string // Only set by Gumbel search
}

type Agent interface {
	// FindMove searches from state and returns the action to play with the search metrics
	FindMove(state game.State) (Decision, metrics.SearchMetric, error)
}

type Option func(*options)

type options struct {
	collector metrics.Collector
}

func WithCollector(c metrics.Collector) Option {
	return func(o *options) {
		o.collector = c
	}
}

func newOptions(opts []Option) options {
	o := options{collector: metrics.NewDummyCollector()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns a Gumbel agent, or a plain PUCT agent when the config turns Gumbel off.
func New(config searcher.Config, oracle game.Oracle, opts ...Option) Agent {
	if config.UseGumbel {
		return NewGumbelAgent(config, oracle, opts...)
	}
	return NewPUCTAgent(config, oracle, opts...)
}

// leaf is what a simulation learned about the last node of its path.
type leaf struct {
	candidates []game.Candidate
	value      float64
	reward     float64
}

// replay plays the actions below the root of path on the root state.
func replay(m *searcher.MCTS, state game.State, path []searcher.NodeID) game.State {
	for _, id := range path[1:] {
		state = state.Play(m.Node(id).Action())
	}
	return state
}

// evaluate asks the oracle about a non-terminal leaf. Terminal leaves are
// backed up with their outcome and never expanded.
func evaluate(oracle game.Oracle, state game.State, collector metrics.Collector) (leaf, error) {
	if state.IsTerminal() {
		collector.AddTerminalLeaf()
		return leaf{value: state.Value()}, nil
	}

	collector.AddOracleCall()
	ev, err := oracle.Evaluate(state)
	if err != nil {
		return leaf{}, fmt.Errorf("failed to evaluate leaf: %w", err)
	}
	if len(ev.Candidates) == 0 {
		log.Warn().Msgf("oracle returned no candidates for a non-terminal state of %s", state.ToMove())
	}
	return leaf{candidates: ev.Candidates, value: ev.Value, reward: ev.Reward}, nil
}
