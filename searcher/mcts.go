package searcher

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gumbelzero/game"

	"golang.org/x/exp/rand"
)

// MCTS owns one search tree and drives the select, expand and backup steps of a
// simulation. The oracle call between selection and expansion belongs to the caller.
// An MCTS is not safe for concurrent use; run one per goroutine.
type MCTS struct {
	config   Config
	tree     *Tree
	rescaler *ValueRescaler
	rng      *rand.Rand
}

func NewMCTS(config Config) *MCTS {
	if err := config.Validate(); err != nil {
		panic(fmt.Sprintf("invalid search config: %v", err))
	}
	return &MCTS{
		config:   config,
		tree:     NewTree(config.TreeCapacity),
		rescaler: NewValueRescaler(config.ValueRescale),
		rng:      rand.New(rand.NewSource(config.Seed)),
	}
}

// Reset discards the tree for a new search. toMove is the player whose
// children are about to be searched; the root is tagged with it.
func (m *MCTS) Reset(toMove game.Player) {
	m.tree.Reset()
	m.rescaler.Reset()
	m.tree.Node(m.tree.Root()).action = game.Action{ID: -1, Player: toMove}
}

func (m *MCTS) Config() Config {
	return m.config
}

func (m *MCTS) Tree() *Tree {
	return m.tree
}

func (m *MCTS) Rescaler() *ValueRescaler {
	return m.rescaler
}

func (m *MCTS) Root() NodeID {
	return m.tree.Root()
}

func (m *MCTS) Node(id NodeID) *Node {
	return m.tree.Node(id)
}

func (m *MCTS) RootNode() *Node {
	return m.tree.Node(m.tree.Root())
}

func (m *MCTS) Rand() *rand.Rand {
	return m.rng
}

// NumSimulations is the root's visit count; the root's own evaluation counts as one.
func (m *MCTS) NumSimulations() int {
	return int(m.RootNode().count)
}

func (m *MCTS) ReachedMaximumSimulations() bool {
	return m.NumSimulations() >= m.config.NumSimulations+1
}

// Select walks from the root to a leaf by PUCT score.
func (m *MCTS) Select() []NodeID {
	return m.SelectFrom(m.tree.Root())
}

// SelectFrom walks from start to a leaf by PUCT score and returns the path, start included.
func (m *MCTS) SelectFrom(start NodeID) []NodeID {
	id := start
	path := []NodeID{id}
	for !m.tree.Node(id).IsLeaf() {
		id = m.selectChildByPUCTScore(id)
		path = append(path, id)
	}
	return path
}

func (m *MCTS) selectChildByPUCTScore(id NodeID) NodeID {
	node := m.tree.Node(id)
	if node.IsLeaf() {
		panic("cannot select a child of a leaf node")
	}

	p := newPUCT(m.config.PUCTInit, m.config.PUCTBase, node.count)
	initQ := m.calculateInitQValue(id)

	selected := NoNode
	bestScore := -math.MaxFloat64
	children := m.tree.Children(id)
	for i := range children {
		score := children[i].puctScore(p, m.rescaler, initQ)
		if score <= bestScore {
			continue
		}
		bestScore = score
		selected = node.firstChild + NodeID(i)
	}
	if selected == NoNode {
		panic("no child could be selected by puct score")
	}
	return selected
}

// calculateInitQValue averages the visited children's values with one extra loss,
// so unvisited children look slightly worse than what has been seen so far.
func (m *MCTS) calculateInitQValue(id NodeID) float64 {
	if m.tree.Node(id).IsLeaf() {
		panic("cannot compute init Q of a leaf node")
	}
	sumOfWin, sum := 0.0, 0.0
	children := m.tree.Children(id)
	for i := range children {
		if children[i].count == 0 {
			continue
		}
		sumOfWin += children[i].NormalizedMean(m.rescaler)
		sum++
	}
	return (sumOfWin - InitQLoss) / (sum + 1)
}

// Expand attaches one child per candidate to a leaf, in candidate order.
func (m *MCTS) Expand(leaf NodeID, candidates []game.Candidate) {
	if len(candidates) == 0 {
		panic("cannot expand a node without action candidates")
	}
	if !m.tree.Node(leaf).IsLeaf() {
		panic("cannot expand a node that already has children")
	}

	first := m.tree.Allocate(len(candidates))
	node := m.tree.Node(leaf) // Allocate may have moved the arena
	node.firstChild = first
	node.numChildren = len(candidates)

	children := m.tree.Children(leaf)
	for i, candidate := range candidates {
		child := &children[i]
		child.reset()
		child.action = candidate.Action
		child.policy = candidate.Policy
		child.policyLogit = candidate.Logit
	}
}

// Backup records the leaf's predicted value and reward, then adds the value to
// every node on the path, discounting it across each edge on the way up.
func (m *MCTS) Backup(path []NodeID, value, reward float64) {
	if len(path) == 0 {
		panic("cannot back up an empty path")
	}
	leaf := m.tree.Node(path[len(path)-1])
	leaf.value = value
	leaf.reward = reward

	updated := value
	for i := len(path) - 1; i >= 0; i-- {
		node := m.tree.Node(path[i])
		oldMean := node.mean
		node.Add(updated, 1)
		m.rescaler.Update(oldMean, node.mean)
		updated = node.reward + m.config.RewardDiscount*updated
	}
}

// IsResign reports whether both the root and the chosen node look lost.
func (m *MCTS) IsResign(selected NodeID) bool {
	rootWinRate := m.RootNode().NormalizedMean(m.rescaler)
	actionWinRate := m.tree.Node(selected).NormalizedMean(m.rescaler)
	return rootWinRate < m.config.ResignThreshold && actionWinRate < m.config.ResignThreshold
}

// SelectChildByMaxCount returns the most visited child; ties keep the first.
func (m *MCTS) SelectChildByMaxCount(id NodeID) NodeID {
	node := m.tree.Node(id)
	if node.IsLeaf() {
		panic("cannot select a child of a leaf node")
	}
	maxCount := 0.0
	selected := NoNode
	children := m.tree.Children(id)
	for i := range children {
		if children[i].count <= maxCount {
			continue
		}
		maxCount = children[i].count
		selected = node.firstChild + NodeID(i)
	}
	if selected == NoNode {
		panic("node has children but none of them was visited")
	}
	return selected
}

// SelectChildBySoftmaxCount samples a child proportionally to count^(1/temperature),
// skipping children whose value is more than valueThreshold below the most visited one.
func (m *MCTS) SelectChildBySoftmaxCount(id NodeID, temperature, valueThreshold float64) NodeID {
	node := m.tree.Node(id)
	bestMean := m.tree.Node(m.SelectChildByMaxCount(id)).NormalizedMean(m.rescaler)

	selected := NoNode
	sum := 0.0
	children := m.tree.Children(id)
	for i := range children {
		count := math.Pow(children[i].count, 1/temperature)
		mean := children[i].NormalizedMean(m.rescaler)
		if count == 0 || mean < bestMean-valueThreshold {
			continue
		}
		sum += count
		// Reservoir sampling: keep this child with probability count/sum
		if selected == NoNode || m.rng.Float64()*sum < count {
			selected = node.firstChild + NodeID(i)
		}
	}
	if selected == NoNode {
		panic("no child could be sampled by softmax count")
	}
	return selected
}

// SearchDistribution formats the root's visited children as "id:count,...".
func (m *MCTS) SearchDistribution() string {
	var sb strings.Builder
	children := m.tree.Children(m.tree.Root())
	for i := range children {
		if children[i].count == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(children[i].action.ID))
		sb.WriteByte(':')
		sb.WriteString(formatWeight(children[i].count))
	}
	return sb.String()
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', 6, 64)
}

func (m *MCTS) String() string {
	return fmt.Sprintf("MCTS={Size=%d, Simulations=%d, Root={%v}}", m.tree.Size(), m.NumSimulations(), m.RootNode())
}
