package agent

import (
	"gumbelzero/experiments/metrics"
	"gumbelzero/game"
	"gumbelzero/searcher"
)

// GumbelAgent drives a GumbelActor: every simulation selects a path, evaluates
// its leaf, expands and backs up, then lets the tournament halve its candidates.
type GumbelAgent struct {
	actor     *searcher.GumbelActor
	oracle    game.Oracle
	collector metrics.Collector
}

func NewGumbelAgent(config searcher.Config, oracle game.Oracle, opts ...Option) *GumbelAgent {
	o := newOptions(opts)
	return &GumbelAgent{
		actor:     searcher.NewGumbelActor(config),
		oracle:    oracle,
		collector: o.collector,
	}
}

func (a *GumbelAgent) Actor() *searcher.GumbelActor {
	return a.actor
}

func (a *GumbelAgent) FindMove(state game.State) (Decision, metrics.SearchMetric, error) {
	if state.IsTerminal() {
		return Decision{}, metrics.SearchMetric{}, ErrTerminalState
	}

	a.collector.Start()
	a.actor.Reset(state.ToMove())
	m := a.actor.MCTS()

	sampleSize := 0
	for !a.actor.Done() {
		path := a.actor.Selection()
		l, err := evaluate(a.oracle, replay(m, state, path), a.collector)
		if err != nil {
			return Decision{}, metrics.SearchMetric{}, err
		}
		if len(l.candidates) > 0 {
			a.actor.Expand(path[len(path)-1], l.candidates)
		}
		a.actor.Backup(path, l.value, l.reward)
		a.collector.AddSimulation()
		if m.RootNode().IsLeaf() {
			return Decision{}, metrics.SearchMetric{}, ErrNoCandidates
		}

		a.actor.AfterEvaluation()
		if size := a.actor.SampleSize(); size != sampleSize {
			if sampleSize > 0 {
				a.collector.AddHalvingRound()
			}
			sampleSize = size
		}
	}

	selected := a.actor.DecideAction()
	decision := Decision{
		Action:             m.Node(selected).Action(),
		Resign:             a.actor.IsResign(selected),
		SearchDistribution: m.SearchDistribution(),
		CompletedPolicy:    a.actor.CompletedPolicy(),
	}
	return decision, a.collector.Complete(m.Tree().Size()), nil
}
