package searcher

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"gumbelzero/game"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// GumbelActor restricts root selection to a shrinking set of candidates and picks
// the final action with a sequential-halving tournament over them.
type GumbelActor struct {
	mcts             *MCTS
	candidates       []NodeID
	sampleSize       int
	simulationBudget float64
	noise            distuv.GumbelRight
}

func NewGumbelActor(config Config) *GumbelActor {
	m := NewMCTS(config)
	return &GumbelActor{
		mcts:  m,
		noise: distuv.GumbelRight{Mu: 0, Beta: 1, Src: m.rng},
	}
}

// Reset starts a new search for the player to move.
func (a *GumbelActor) Reset(toMove game.Player) {
	a.mcts.Reset(toMove)
	a.candidates = a.candidates[:0]
	a.sampleSize = 0
	a.simulationBudget = 0
}

func (a *GumbelActor) MCTS() *MCTS {
	return a.mcts
}

func (a *GumbelActor) Candidates() []NodeID {
	return slices.Clone(a.candidates)
}

func (a *GumbelActor) SampleSize() int {
	return a.sampleSize
}

func (a *GumbelActor) SimulationBudget() float64 {
	return a.simulationBudget
}

func (a *GumbelActor) Done() bool {
	return a.mcts.ReachedMaximumSimulations()
}

// Selection returns the path for the next simulation. The first simulation
// evaluates the root; afterwards the least visited candidate is descended from.
func (a *GumbelActor) Selection() []NodeID {
	if a.mcts.NumSimulations() == 0 {
		return a.mcts.Select()
	}
	if len(a.candidates) == 0 {
		panic("gumbel candidate set is empty")
	}

	tree := a.mcts.tree
	slices.SortStableFunc(a.candidates, func(lhs, rhs NodeID) int {
		l, r := tree.Node(lhs), tree.Node(rhs)
		if c := cmp.Compare(l.count, r.count); c != 0 {
			return c
		}
		return cmp.Compare(r.policyLogit, l.policyLogit)
	})

	path := a.mcts.SelectFrom(a.candidates[0])
	return append([]NodeID{a.mcts.Root()}, path...)
}

// Expand expands leaf and, when it is the root and noise is on, perturbs the
// children's logits with Gumbel noise.
func (a *GumbelActor) Expand(leaf NodeID, candidates []game.Candidate) {
	a.mcts.Expand(leaf, candidates)
	if leaf != a.mcts.Root() || !a.mcts.config.GumbelNoise {
		return
	}
	children := a.mcts.tree.Children(leaf)
	for i := range children {
		g := a.noise.Rand()
		children[i].policyLogit += g
		children[i].policyNoise = g
	}
}

func (a *GumbelActor) Backup(path []NodeID, value, reward float64) {
	a.mcts.Backup(path, value, reward)
}

// AfterEvaluation advances the tournament once a simulation has been backed up.
func (a *GumbelActor) AfterEvaluation() {
	a.sequentialHalving()
}

func (a *GumbelActor) sequentialHalving() {
	config := a.mcts.config
	n := float64(config.NumSimulations)
	k := float64(config.GumbelSampleSize)

	switch simulations := a.mcts.NumSimulations(); {
	case simulations < 1:
		return
	case simulations == 1:
		a.collectCandidates()
		a.sampleSize = config.GumbelSampleSize
		a.simulationBudget = max(1, math.Floor(n/(math.Log2(k)*float64(a.sampleSize))))
		return
	}

	tree := a.mcts.tree
	for _, id := range a.candidates {
		if tree.Node(id).count < a.simulationBudget {
			return
		}
	}

	if a.sampleSize <= 2 {
		return
	}
	nextBudget := math.Floor(n / (math.Log2(k) * float64(a.sampleSize) / 2))
	if nextBudget <= 0 {
		return
	}

	a.sampleSize /= 2
	a.sortCandidatesByScore()
	if len(a.candidates) > a.sampleSize {
		a.candidates = a.candidates[:a.sampleSize]
	}
	a.simulationBudget = tree.Node(a.candidates[0]).count + nextBudget

	log.Debug().Msgf("halved gumbel candidates to %d with simulation budget %v", a.sampleSize, a.simulationBudget)
}

func (a *GumbelActor) collectCandidates() {
	root := a.mcts.Root()
	numChildren := a.mcts.tree.Node(root).numChildren
	a.candidates = a.candidates[:0]
	for i := 0; i < numChildren; i++ {
		a.candidates = append(a.candidates, a.mcts.tree.Node(root).Child(i))
	}

	tree := a.mcts.tree
	slices.SortStableFunc(a.candidates, func(lhs, rhs NodeID) int {
		return cmp.Compare(tree.Node(rhs).policyLogit, tree.Node(lhs).policyLogit)
	})
	if len(a.candidates) > a.mcts.config.GumbelSampleSize {
		a.candidates = a.candidates[:a.mcts.config.GumbelSampleSize]
	}
}

// candidateScore is logit + (c_visit+1)*c_scale*mean; unvisited candidates rank last.
func (a *GumbelActor) candidateScore(n *Node) float64 {
	if n.count <= 0 {
		return math.Inf(-1)
	}
	config := a.mcts.config
	return n.policyLogit + (config.GumbelSigmaVisitC+1)*config.GumbelSigmaScaleC*n.SignedMean()
}

func (a *GumbelActor) sortCandidatesByScore() {
	if len(a.candidates) == 0 {
		panic("gumbel candidate set is empty")
	}
	tree := a.mcts.tree
	slices.SortStableFunc(a.candidates, func(lhs, rhs NodeID) int {
		return cmp.Compare(a.candidateScore(tree.Node(rhs)), a.candidateScore(tree.Node(lhs)))
	})
}

// DecideAction returns the root child to play once the search is over.
func (a *GumbelActor) DecideAction() NodeID {
	config := a.mcts.config
	switch config.ActionSelection {
	case SelectActionByCount:
		a.sortCandidatesByScore()
		return a.candidates[0]
	case SelectActionBySoftmaxCount:
		return a.mcts.SelectChildBySoftmaxCount(a.mcts.Root(), config.SoftmaxTemperature, config.SoftmaxValueThreshold)
	default:
		panic("unknown action selection")
	}
}

func (a *GumbelActor) IsResign(selected NodeID) bool {
	return a.mcts.IsResign(selected)
}

// PolicyWeight is one entry of an exported policy target.
type PolicyWeight struct {
	ActionID int
	Weight   float64
}

// CompletedPolicyWeights assigns every root child a completed-Q logit and returns
// exp(logit - max) for each, dropping entries that underflow. Unvisited children
// use a policy-weighted estimate anchored on the root's own value.
func (a *GumbelActor) CompletedPolicyWeights() []PolicyWeight {
	config := a.mcts.config
	root := a.mcts.RootNode()
	children := a.mcts.tree.Children(a.mcts.Root())
	if len(children) == 0 {
		return nil
	}

	piSum, qSum := 0.0, 0.0
	for i := range children {
		if children[i].count == 0 {
			continue
		}
		piSum += children[i].policy
		qSum += children[i].policy * children[i].SignedValue()
	}

	n := float64(config.NumSimulations)
	valuePi := children[0].action.Player.Sign() * root.value
	weighted := 0.0
	if piSum > 0 {
		weighted = n / piSum * qSum
	}
	nonVisitedValue := 1 / (1 + n) * (valuePi + weighted)

	scale := (config.GumbelSigmaVisitC + 1) * config.GumbelSigmaScaleC
	logits := make([]float64, len(children))
	for i := range children {
		value := nonVisitedValue
		if children[i].count > 0 {
			value = children[i].SignedValue()
		}
		logits[i] = children[i].policyLogit - children[i].policyNoise + scale*value
	}

	maxLogit := floats.Max(logits)
	weights := make([]PolicyWeight, 0, len(children))
	for i := range children {
		shifted := logits[i] - maxLogit
		if shifted < MinShiftedLogit {
			continue
		}
		weights = append(weights, PolicyWeight{ActionID: children[i].action.ID, Weight: math.Exp(shifted)})
	}
	return weights
}

// CompletedPolicy formats CompletedPolicyWeights as "id:weight,...".
func (a *GumbelActor) CompletedPolicy() string {
	var sb strings.Builder
	for i, w := range a.CompletedPolicyWeights() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(w.ActionID))
		sb.WriteByte(':')
		sb.WriteString(formatWeight(w.Weight))
	}
	return sb.String()
}
