package experiments

import (
	"fmt"
	"time"

	"gumbelzero/engine"
	"gumbelzero/experiments/metrics"
	"gumbelzero/game"
	"gumbelzero/searcher"
	"gumbelzero/searcher/agent"

	"github.com/rs/zerolog/log"
)

const NumGames = 10 // Per matchup

// Experiment plays every matchup NumGames times and stores the records under OutDir.
type Experiment struct {
	Name     string
	Matchups [][2]metrics.AgentConfig
	NumGames int
	OutDir   string
	// NewState returns the starting position of each game
	NewState func() game.State
}

// Run plays a named experiment of tic-tac-toe games.
func Run(name string, matchups [][2]metrics.AgentConfig, numGames int, outDir string) (string, error) {
	e := Experiment{
		Name:     name,
		Matchups: matchups,
		NumGames: numGames,
		OutDir:   outDir,
		NewState: func() game.State { return game.NewTicTacToe() },
	}
	return e.Run()
}

// Run returns the directory the records were written to.
func (e Experiment) Run() (string, error) {
	if e.NumGames <= 0 {
		return "", fmt.Errorf("number of games must be positive, got %d", e.NumGames)
	}

	// Run a number of games for each matchup
	start := time.Now()
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", e.Name)

	for mi, matchup := range e.Matchups {
		log.Info().Msgf("starting matchup %d of %d between agent %d and agent %d...", mi+1, len(e.Matchups), matchup[0].ID, matchup[1].ID)

		wins := map[int]int{}
		for i := 0; i < e.NumGames; i++ {
			// Alternate who plays first
			config1, config2 := matchup[0], matchup[1]
			if i%2 == 1 {
				config1, config2 = config2, config1
			}
			count++

			winner, gameMetric, moveMetrics, err := e.runGame(count, config1, config2)
			if err != nil {
				return "", fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     config1.ID,
				Agent2:     config2.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}
			switch winner {
			case game.Player1:
				wins[config1.ID]++
			case game.Player2:
				wins[config2.ID]++
			}

			log.Info().Msgf("completed matchup %d of %d game %d with winner: %s", mi+1, len(e.Matchups), i+1, winner)
		}
		log.Info().Msgf("completed matchup %d of %d: agent %d won %d, agent %d won %d",
			mi+1, len(e.Matchups), matchup[0].ID, wins[matchup[0].ID], matchup[1].ID, wins[matchup[1].ID])
	}

	log.Info().Msgf("completed %s experiment", e.Name)

	return e.store(start, time.Now(), gameRecords, moveRecords)
}

func (e Experiment) store(start, end time.Time, gameRecords []metrics.GameRecord, moveRecords []metrics.MoveRecord) (string, error) {
	writer, err := metrics.NewWriter(e.OutDir, e.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	// Store experiment metadata
	setup := metrics.Setup{
		Name:      e.Name,
		NumGames:  e.NumGames,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
	}
	for _, matchup := range e.Matchups {
		setup.Matchups = append(setup.Matchups, []int{matchup[0].ID, matchup[1].ID})
	}
	if err := writer.WriteSetup(setup); err != nil {
		return "", fmt.Errorf("failed to store setup: %w", err)
	}
	if err := writer.WriteAgentConfigs(uniqueConfigs(e.Matchups)); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	// Store experiment results
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored move records in %s", writer.BaseDir())

	return writer.BaseDir(), nil
}

// runGame executes a single game between two agents and returns the winner
func (e Experiment) runGame(gameID int, config1, config2 metrics.AgentConfig) (game.Player, metrics.GameMetric, []metrics.MoveMetric, error) {
	agent1 := createAgent(config1, uint64(gameID))
	agent2 := createAgent(config2, uint64(gameID))
	return engine.NewSelfPlay(e.NewState(), agent1, agent2).Run()
}

// createAgent gives each game its own seeds so repeated games differ.
func createAgent(config metrics.AgentConfig, gameID uint64) agent.Agent {
	search := config.Search
	search.Seed += gameID
	oracle := game.NewRolloutOracle(search.Seed, config.Rollouts, config.Cutoff)
	return agent.New(search, oracle, agent.WithCollector(metrics.NewCollector()))
}

func uniqueConfigs(matchups [][2]metrics.AgentConfig) []metrics.AgentConfig {
	seen := map[int]bool{}
	configs := []metrics.AgentConfig{}
	for _, matchup := range matchups {
		for _, config := range matchup {
			if seen[config.ID] {
				continue
			}
			seen[config.ID] = true
			configs = append(configs, config)
		}
	}
	return configs
}

// RunGumbelVersusPUCT pits Gumbel root search against plain PUCT at the same budget.
func RunGumbelVersusPUCT(numGames int, outDir string) (string, error) {
	gumbel := metrics.AgentConfig{ID: 1, Rollouts: 4, Search: searcher.NewConfig()}
	puct := metrics.AgentConfig{ID: 2, Rollouts: 4, Search: searcher.NewConfig(searcher.WithoutGumbel())}
	return Run("gumbel_vs_puct", [][2]metrics.AgentConfig{{gumbel, puct}}, numGames, outDir)
}
