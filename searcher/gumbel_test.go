package searcher

import (
	"math"
	"testing"

	"gumbelzero/game"

	"github.com/stretchr/testify/require"
)

func newTestActor(options ...Option) *GumbelActor {
	a := NewGumbelActor(NewConfig(options...))
	a.Reset(game.Player1)
	return a
}

func logitCandidates(logits ...float64) []game.Candidate {
	out := make([]game.Candidate, len(logits))
	for i, logit := range logits {
		out[i] = game.Candidate{
			Action: game.Action{ID: i, Player: game.Player1},
			Policy: 1 / float64(len(logits)),
			Logit:  logit,
		}
	}
	return out
}

// simulate runs one simulation where root children are never expanded and are
// worth values[action ID] from Player1's perspective.
func simulate(a *GumbelActor, root []game.Candidate, rootValue float64, values []float64) {
	path := a.Selection()
	leaf := a.MCTS().Node(path[len(path)-1])
	if path[len(path)-1] == a.MCTS().Root() {
		a.Expand(path[0], root)
		a.Backup(path, rootValue, 0)
	} else {
		a.Backup(path, values[leaf.Action().ID], 0)
	}
	a.AfterEvaluation()
}

func candidateIDs(a *GumbelActor) []int {
	ids := []int{}
	for _, id := range a.Candidates() {
		ids = append(ids, a.MCTS().Node(id).Action().ID)
	}
	return ids
}

func TestGumbelSequentialHalving(t *testing.T) {
	root := logitCandidates(2, 1, 0, -1)
	values := []float64{-1, 0.5, 1, 0}

	t.Run("first simulation collects candidates by logit", func(t *testing.T) {
		a := newTestActor(WithSimulations(16), WithGumbel(4, 50, 0.1))

		simulate(a, root, 0, values)

		require.Equal(t, []int{0, 1, 2, 3}, candidateIDs(a), "Candidates should be sorted by logit")
		require.Equal(t, 4, a.SampleSize())
		require.Equal(t, 2.0, a.SimulationBudget(), "Budget should be floor(16/(log2(4)*4))")
	})

	t.Run("halving keeps the best scores rather than the best logits", func(t *testing.T) {
		a := newTestActor(WithSimulations(16), WithGumbel(4, 50, 0.1))

		for i := 0; i < 9; i++ {
			simulate(a, root, 0, values)
		}

		require.Equal(t, 2, a.SampleSize(), "Sample size should halve once all reach the budget")
		require.Equal(t, []int{2, 1}, candidateIDs(a),
			"Candidates should be ranked by logit plus scaled mean")
		require.Equal(t, 6.0, a.SimulationBudget(), "Budget should be best count + floor(16/(log2(4)*2))")
		for _, child := range a.MCTS().Tree().Children(a.MCTS().Root()) {
			require.Equal(t, 2.0, child.Count(), "Every first-round candidate should get the budget")
		}
	})

	t.Run("tournament spends the whole budget and decides by score", func(t *testing.T) {
		a := newTestActor(WithSimulations(16), WithGumbel(4, 50, 0.1))

		for !a.Done() {
			simulate(a, root, 0, values)
		}

		require.Equal(t, 17, a.MCTS().NumSimulations())
		require.Equal(t, []int{2, 1}, candidateIDs(a))
		decided := a.MCTS().Node(a.DecideAction())
		require.Equal(t, 2, decided.Action().ID, "Best scored candidate should be played")
		require.Equal(t, 6.0, decided.Count())
	})

	t.Run("halves log2(K) rounds and never grows", func(t *testing.T) {
		a := newTestActor(WithSimulations(64), WithGumbel(8, 50, 0.1))
		root := logitCandidates(0.7, 0.1, -0.3, 1.2, 0.4, -1, 0.9, 0)
		values := []float64{0.1, -0.2, 0.3, -0.4, 0.5, -0.6, 0.7, -0.8}

		sizes := []int{}
		previous := math.MaxInt
		for !a.Done() {
			simulate(a, root, 0, values)
			got := len(a.Candidates())
			require.LessOrEqual(t, got, previous, "Candidate set should never grow")
			previous = got
			if len(sizes) == 0 || sizes[len(sizes)-1] != a.SampleSize() {
				sizes = append(sizes, a.SampleSize())
			}
		}

		require.Equal(t, []int{8, 4, 2}, sizes, "Should play log2(8) rounds")
	})

	t.Run("sample size larger than the children keeps every child", func(t *testing.T) {
		a := newTestActor(WithSimulations(16), WithGumbel(16, 50, 0.1))

		simulate(a, root, 0, values)

		require.Len(t, a.Candidates(), 4)
		require.Equal(t, 16, a.SampleSize())
		require.Equal(t, 1.0, a.SimulationBudget(), "Budget should be at least one")
	})
}

func TestGumbelSelection(t *testing.T) {
	t.Run("first simulation selects the root", func(t *testing.T) {
		a := newTestActor()

		require.Equal(t, []NodeID{a.MCTS().Root()}, a.Selection())
	})

	t.Run("least visited candidate with the higher logit goes next", func(t *testing.T) {
		a := newTestActor(WithSimulations(16), WithGumbel(4, 50, 0.1))
		root := logitCandidates(0.5, 3, 1, 2)
		simulate(a, root, 0, []float64{0, 0, 0, 0})

		path := a.Selection()

		require.Len(t, path, 2)
		require.Equal(t, a.MCTS().Root(), path[0], "Path should start at the root")
		require.Equal(t, 1, a.MCTS().Node(path[1]).Action().ID, "Highest logit should be tried first")
	})

	t.Run("panics without candidates", func(t *testing.T) {
		a := newTestActor()
		a.Expand(a.MCTS().Root(), logitCandidates(1, 0))
		a.Backup([]NodeID{a.MCTS().Root()}, 0, 0)

		require.Panics(t, func() { a.Selection() }, "Candidates are only collected by AfterEvaluation")
	})
}

func TestGumbelNoise(t *testing.T) {
	t.Run("root children get noise on their logits", func(t *testing.T) {
		a := newTestActor(WithGumbelNoise(), WithSeed(3))
		root := logitCandidates(1, 0, -1)

		a.Expand(a.MCTS().Root(), root)

		for i, child := range a.MCTS().Tree().Children(a.MCTS().Root()) {
			require.NotZero(t, child.PolicyNoise(), "Root child should carry noise")
			require.InDelta(t, root[i].Logit+child.PolicyNoise(), child.PolicyLogit(), 1e-12)
		}
	})

	t.Run("deeper nodes stay noise free", func(t *testing.T) {
		a := newTestActor(WithGumbelNoise(), WithSeed(3))
		a.Expand(a.MCTS().Root(), logitCandidates(1, 0))
		child := a.MCTS().RootNode().Child(0)

		a.Expand(child, logitCandidates(1, 0))

		for _, grandChild := range a.MCTS().Tree().Children(child) {
			require.Zero(t, grandChild.PolicyNoise())
		}
	})

	t.Run("noise is off by default", func(t *testing.T) {
		a := newTestActor()
		a.Expand(a.MCTS().Root(), logitCandidates(1, 0))

		for _, child := range a.MCTS().Tree().Children(a.MCTS().Root()) {
			require.Zero(t, child.PolicyNoise())
		}
	})
}

func TestGumbelCompletedPolicy(t *testing.T) {
	t.Run("all unvisited children share the non-visited value", func(t *testing.T) {
		a := newTestActor(WithSimulations(16))
		simulate(a, logitCandidates(2, 1, 0, -1), 0.5, nil)

		weights := a.CompletedPolicyWeights()

		require.Len(t, weights, 4, "Every child should get an entry")
		for i, w := range weights {
			require.Equal(t, i, w.ActionID)
			require.LessOrEqual(t, w.Weight, 1.0)
			require.InDelta(t, math.Exp(float64(-i)), w.Weight, 1e-12, "Shared value should cancel out")
		}
		require.Equal(t, "0:1,1:0.367879,2:0.135335,3:0.0497871", a.CompletedPolicy())
	})

	t.Run("unvisited children use the policy weighted estimate", func(t *testing.T) {
		a := newTestActor(WithSimulations(16))
		root := []game.Candidate{
			{Action: game.Action{ID: 7, Player: game.Player1}, Policy: 0.6},
			{Action: game.Action{ID: 9, Player: game.Player1}, Policy: 0.4},
		}
		a.Expand(a.MCTS().Root(), root)
		a.Backup([]NodeID{a.MCTS().Root()}, 0.2, 0)
		a.Backup([]NodeID{a.MCTS().Root(), a.MCTS().RootNode().Child(0)}, 0.5, 0)

		weights := a.CompletedPolicyWeights()

		nonVisited := 1.0 / 17 * (0.2 + 16/0.6*(0.6*0.5))
		scale := 51 * 0.1
		require.Len(t, weights, 2)
		require.Equal(t, 7, weights[0].ActionID)
		require.InDelta(t, 1.0, weights[0].Weight, 1e-12, "Visited child holds the max logit")
		require.InDelta(t, math.Exp(scale*(nonVisited-0.5)), weights[1].Weight, 1e-12)
	})

	t.Run("values are seen from the acting player", func(t *testing.T) {
		a := newTestActor(WithSimulations(16))
		a.Reset(game.Player2)
		root := []game.Candidate{
			{Action: game.Action{ID: 0, Player: game.Player2}, Policy: 0.5},
			{Action: game.Action{ID: 1, Player: game.Player2}, Policy: 0.5},
		}
		a.Expand(a.MCTS().Root(), root)
		a.Backup([]NodeID{a.MCTS().Root()}, 0, 0)
		a.Backup([]NodeID{a.MCTS().Root(), a.MCTS().RootNode().Child(0)}, 0.9, 0)  // good for Player1
		a.Backup([]NodeID{a.MCTS().Root(), a.MCTS().RootNode().Child(1)}, -0.9, 0) // good for Player2

		weights := a.CompletedPolicyWeights()

		require.Less(t, weights[0].Weight, weights[1].Weight, "Player2 should prefer its winning move")
		require.Equal(t, 1.0, weights[1].Weight)
	})

	t.Run("negligible entries are dropped", func(t *testing.T) {
		a := newTestActor(WithSimulations(16))
		a.Expand(a.MCTS().Root(), logitCandidates(50, 0))
		a.Backup([]NodeID{a.MCTS().Root()}, 0, 0)

		require.Equal(t, "0:1", a.CompletedPolicy(), "Shifted logits below -38 should be skipped")
	})

	t.Run("noise is removed from the reported logits", func(t *testing.T) {
		a := newTestActor(WithSimulations(16), WithGumbelNoise(), WithSeed(11))
		a.Expand(a.MCTS().Root(), logitCandidates(0, 0, 0))
		a.Backup([]NodeID{a.MCTS().Root()}, 0, 0)

		for _, w := range a.CompletedPolicyWeights() {
			require.InDelta(t, 1.0, w.Weight, 1e-12, "Equal logits without noise should give equal weights")
		}
	})

	t.Run("unexpanded root reports nothing", func(t *testing.T) {
		a := newTestActor()

		require.Empty(t, a.CompletedPolicy())
	})
}

func TestGumbelDecideAction(t *testing.T) {
	t.Run("softmax count samples a visited root child", func(t *testing.T) {
		a := newTestActor(WithSimulations(8), WithGumbel(4, 50, 0.1), WithSoftmaxCount(1), WithSeed(5))
		root := logitCandidates(1, 0.5, 0, -0.5)
		for !a.Done() {
			simulate(a, root, 0, []float64{0.1, 0.1, 0.1, 0.1})
		}

		decided := a.MCTS().Node(a.DecideAction())

		require.Positive(t, decided.Count())
	})

	t.Run("resign follows the decided node", func(t *testing.T) {
		a := newTestActor(WithSimulations(8), WithGumbel(2, 50, 0.1), WithResignThreshold(-0.9))
		root := logitCandidates(1, 0)
		for !a.Done() {
			simulate(a, root, -1, []float64{-1, -1})
		}

		require.True(t, a.IsResign(a.DecideAction()))
	})

	t.Run("reset clears the tournament", func(t *testing.T) {
		a := newTestActor(WithSimulations(16), WithGumbel(4, 50, 0.1))
		simulate(a, logitCandidates(1, 0), 0, nil)
		a.Reset(game.Player2)

		require.Empty(t, a.Candidates())
		require.Zero(t, a.SampleSize())
		require.Zero(t, a.MCTS().NumSimulations())
		require.Equal(t, game.Player2, a.MCTS().RootNode().Action().Player)
	})
}
