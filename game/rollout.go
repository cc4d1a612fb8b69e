package game

import (
	"fmt"

	"golang.org/x/exp/rand"
)

const MaxCutoff = 1000

// RolloutOracle evaluates a state with uniform priors over its legal actions and the
// mean outcome of random playouts. Playouts stopped at the cutoff count as draws.
type RolloutOracle struct {
	rng      *rand.Rand
	rollouts int
	cutoff   int
}

func NewRolloutOracle(seed uint64, rollouts, cutoff int) *RolloutOracle {
	if rollouts <= 0 {
		rollouts = 1
	}
	if cutoff <= 0 {
		cutoff = MaxCutoff
	}
	return &RolloutOracle{
		rng:      rand.New(rand.NewSource(seed)),
		rollouts: rollouts,
		cutoff:   cutoff,
	}
}

func (o *RolloutOracle) Evaluate(state State) (Evaluation, error) {
	if state.IsTerminal() {
		return Evaluation{Value: state.Value()}, nil
	}

	actions := state.LegalActions()
	if len(actions) == 0 {
		return Evaluation{}, fmt.Errorf("non-terminal state for %s has no legal actions", state.ToMove())
	}

	candidates := make([]Candidate, len(actions))
	prior := 1.0 / float64(len(actions))
	for i, action := range actions {
		candidates[i] = Candidate{Action: action, Policy: prior, Logit: 0}
	}

	total := 0.0
	for i := 0; i < o.rollouts; i++ {
		total += o.rollout(state)
	}
	return Evaluation{Value: total / float64(o.rollouts), Candidates: candidates}, nil
}

func (o *RolloutOracle) rollout(state State) float64 {
	depth := 0
	moves := state.LegalActions()
	for len(moves) > 0 && depth < o.cutoff {
		state = state.Play(moves[o.rng.Intn(len(moves))]) // Random rollout policy
		moves = state.LegalActions()
		depth++
	}
	if state.IsTerminal() {
		return state.Value()
	}
	return 0
}
