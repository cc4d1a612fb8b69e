package agent

import (
	"gumbelzero/experiments/metrics"
	"gumbelzero/game"
	"gumbelzero/searcher"
)

// PUCTAgent searches every node, the root included, by PUCT score and plays
// the most visited child or samples one by softmax count.
type PUCTAgent struct {
	mcts      *searcher.MCTS
	oracle    game.Oracle
	collector metrics.Collector
}

func NewPUCTAgent(config searcher.Config, oracle game.Oracle, opts ...Option) *PUCTAgent {
	o := newOptions(opts)
	return &PUCTAgent{
		mcts:      searcher.NewMCTS(config),
		oracle:    oracle,
		collector: o.collector,
	}
}

func (a *PUCTAgent) MCTS() *searcher.MCTS {
	return a.mcts
}

func (a *PUCTAgent) FindMove(state game.State) (Decision, metrics.SearchMetric, error) {
	if state.IsTerminal() {
		return Decision{}, metrics.SearchMetric{}, ErrTerminalState
	}

	a.collector.Start()
	m := a.mcts
	m.Reset(state.ToMove())

	for !m.ReachedMaximumSimulations() {
		path := m.Select()
		l, err := evaluate(a.oracle, replay(m, state, path), a.collector)
		if err != nil {
			return Decision{}, metrics.SearchMetric{}, err
		}
		if len(l.candidates) > 0 {
			m.Expand(path[len(path)-1], l.candidates)
		}
		m.Backup(path, l.value, l.reward)
		a.collector.AddSimulation()
		if m.RootNode().IsLeaf() {
			return Decision{}, metrics.SearchMetric{}, ErrNoCandidates
		}
	}

	config := m.Config()
	var selected searcher.NodeID
	switch config.ActionSelection {
	case searcher.SelectActionBySoftmaxCount:
		selected = m.SelectChildBySoftmaxCount(m.Root(), config.SoftmaxTemperature, config.SoftmaxValueThreshold)
	default:
		selected = m.SelectChildByMaxCount(m.Root())
	}

	decision := Decision{
		Action:             m.Node(selected).Action(),
		Resign:             m.IsResign(selected),
		SearchDistribution: m.SearchDistribution(),
	}
	return decision, a.collector.Complete(m.Tree().Size()), nil
}
