package experiments

import (
	"gumbelzero/experiments/metrics"
	"gumbelzero/searcher"
)

var simulationBudgets = []int{4, 8, 32, 64}

// RunSimulationScaling pairs a baseline Gumbel agent against Gumbel agents with
// smaller and larger simulation budgets. Move records carry the search duration,
// so the same run also measures throughput per budget.
func RunSimulationScaling(numGames int, outDir string) (string, error) {
	baseline := metrics.AgentConfig{ID: 0, Rollouts: 4, Search: searcher.NewConfig()}

	// Each matchup pairs the baseline agent against a scaled agent
	matchups := [][2]metrics.AgentConfig{}
	for i, budget := range simulationBudgets {
		scaled := metrics.AgentConfig{
			ID:       i + 1,
			Rollouts: baseline.Rollouts,
			Search:   searcher.NewConfig(searcher.WithSimulations(budget)),
		}
		matchups = append(matchups, [2]metrics.AgentConfig{baseline, scaled})
	}

	return Run("simulation_scaling", matchups, numGames, outDir)
}
