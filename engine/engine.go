package engine

import (
	"gumbelzero/experiments/metrics"
	"gumbelzero/game"
)

const MaxMoves = 10000

type Engine interface {
	// Run plays a game till it ends, a player resigns or a max number of moves is reached
	Run() (winner game.Player, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
