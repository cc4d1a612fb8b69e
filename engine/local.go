package engine

import (
	"fmt"
	"time"

	"gumbelzero/experiments/metrics"
	"gumbelzero/game"
	"gumbelzero/searcher/agent"

	"github.com/rs/zerolog/log"
)

// SelfPlay pits two agents against each other on one machine. Agents[0] plays
// Player1 and Agents[1] plays Player2.
type SelfPlay struct {
	State    game.State
	Agents   [2]agent.Agent
	MaxMoves int
}

func NewSelfPlay(state game.State, agent1, agent2 agent.Agent) *SelfPlay {
	if agent1 == nil || agent2 == nil {
		panic("self-play needs two agents")
	}
	return &SelfPlay{
		State:    state,
		Agents:   [2]agent.Agent{agent1, agent2},
		MaxMoves: MaxMoves,
	}
}

func (e *SelfPlay) agentFor(p game.Player) agent.Agent {
	switch p {
	case game.Player1:
		return e.Agents[0]
	case game.Player2:
		return e.Agents[1]
	default:
		panic(fmt.Sprintf("no agent plays %s", p))
	}
}

// Run executes the entire game loop until the game ends.
func (e *SelfPlay) Run() (game.Player, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.State.ToMove(),
		StartTime:      time.Now(),
	}
	moveMetrics := []metrics.MoveMetric{}

	log.Debug().Msgf("%s is starting", gameMetric.StartingPlayer)

	step := 1
	for !e.State.IsTerminal() && step <= e.MaxMoves {
		player := e.State.ToMove()

		decision, searchMetric, err := e.agentFor(player).FindMove(e.State)
		if err != nil {
			return game.PlayerNone, gameMetric, moveMetrics, fmt.Errorf("failed to find move %d for %s: %w", step, player, err)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:               step,
			Player:             player,
			Action:             decision.Action.ID,
			Resign:             decision.Resign,
			SearchDistribution: decision.SearchDistribution,
			CompletedPolicy:    decision.CompletedPolicy,
			SearchMetric:       searchMetric,
		})

		if decision.Resign {
			log.Debug().Msgf("%s resigned at move %d", player, step)
			gameMetric.Resigned = true
			gameMetric.Winner = player.Next()
			break
		}

		log.Debug().Msgf("move %d: %s plays %d (%s)", step, player, decision.Action.ID, decision.SearchDistribution)
		e.State = e.State.Play(decision.Action)
		step++
	}

	if !gameMetric.Resigned {
		gameMetric.Winner = winnerOf(e.State)
	}
	if !e.State.IsTerminal() && !gameMetric.Resigned {
		log.Debug().Msgf("stopped after %d moves without a winner", e.MaxMoves)
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)
	return gameMetric.Winner, gameMetric, moveMetrics, nil
}

// winnerOf reads the winner off a terminal state's value; unfinished games are draws.
func winnerOf(state game.State) game.Player {
	if !state.IsTerminal() {
		return game.PlayerNone
	}
	switch v := state.Value(); {
	case v > 0:
		return game.Player1
	case v < 0:
		return game.Player2
	default:
		return game.PlayerNone
	}
}
