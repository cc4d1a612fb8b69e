package searcher

import (
	"fmt"

	"gumbelzero/game"
)

// NodeID addresses a node in its Tree. IDs stay valid until the tree is reset.
type NodeID int32

const NoNode NodeID = -1

// Node is an edge and the state it leads to. Mean is kept from Player1's
// perspective; counts are real-valued so weighted updates can be undone.
type Node struct {
	action      game.Action
	count       float64
	mean        float64
	policy      float64
	policyLogit float64
	policyNoise float64
	value       float64
	reward      float64
	firstChild  NodeID
	numChildren int
}

func (n *Node) reset() {
	*n = Node{firstChild: NoNode}
}

// Add folds value into the running mean with the given weight.
func (n *Node) Add(value, weight float64) {
	if n.count+weight <= 0 {
		n.reset()
		return
	}
	n.count += weight
	n.mean += weight * (value - n.mean) / n.count
}

// Remove takes a previously added value back out of the running mean.
func (n *Node) Remove(value, weight float64) {
	if n.count-weight <= 0 {
		n.reset()
		return
	}
	n.count -= weight
	n.mean -= weight * (value - n.mean) / n.count
}

// NormalizedMean is the mean seen by the player who made this node's action,
// rescaled into [-1, 1] by the tree's live value range when rescaling is on.
func (n *Node) NormalizedMean(rescaler *ValueRescaler) float64 {
	value := n.mean
	if rescaler.Enabled() {
		if rescaler.Len() < 2 {
			return 1
		}
		value = rescaler.Normalize(n.mean)
	}
	return n.action.Player.Sign() * value
}

// NormalizedPUCTScore scores n as a child of a parent with totalSimulations visits.
// initQ stands in for the value of a child that has never been visited.
func (n *Node) NormalizedPUCTScore(cfg Config, totalSimulations float64, rescaler *ValueRescaler, initQ float64) float64 {
	return n.puctScore(newPUCT(cfg.PUCTInit, cfg.PUCTBase, totalSimulations), rescaler, initQ)
}

func (n *Node) puctScore(p puct, rescaler *ValueRescaler, initQ float64) float64 {
	u := p.evaluate(n.policy, n.count)
	q := initQ
	if n.count != 0 {
		q = n.NormalizedMean(rescaler)
	}
	return u + q
}

// SignedMean is the raw mean from the perspective of the player who made the action.
func (n *Node) SignedMean() float64 {
	return n.action.Player.Sign() * n.mean
}

// SignedValue is the predicted value from the perspective of the player who made the action.
func (n *Node) SignedValue() float64 {
	return n.action.Player.Sign() * n.value
}

func (n *Node) Action() game.Action  { return n.action }
func (n *Node) Count() float64       { return n.count }
func (n *Node) Mean() float64        { return n.mean }
func (n *Node) Policy() float64      { return n.policy }
func (n *Node) PolicyLogit() float64 { return n.policyLogit }
func (n *Node) PolicyNoise() float64 { return n.policyNoise }
func (n *Node) Value() float64       { return n.value }
func (n *Node) Reward() float64      { return n.reward }
func (n *Node) FirstChild() NodeID   { return n.firstChild }
func (n *Node) NumChildren() int     { return n.numChildren }
func (n *Node) IsLeaf() bool         { return n.numChildren == 0 }

// Child returns the ID of the i-th child.
func (n *Node) Child(i int) NodeID {
	if i < 0 || i >= n.numChildren {
		panic(fmt.Sprintf("child index %d out of range [0, %d)", i, n.numChildren))
	}
	return n.firstChild + NodeID(i)
}

func (n *Node) String() string {
	return fmt.Sprintf("p = %.4f, p_logit = %.4f, p_noise = %.4f, v = %.4f, r = %.4f, mean = %.4f, count = %.4f",
		n.policy, n.policyLogit, n.policyNoise, n.value, n.reward, n.mean, n.count)
}
