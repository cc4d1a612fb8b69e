package main

import (
	"flag"
	"os"

	"gumbelzero/config"
	"gumbelzero/experiments"
	"gumbelzero/experiments/metrics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "YAML agent config, defaults are used when empty")
	numGames := flag.Int("games", experiments.NumGames, "Number of games per matchup")
	outDir := flag.String("out", "experiments", "Directory for experiment records")
	level := flag.String("level", "info", "Log level")
	experiment := flag.String("experiment", "selfplay", "One of selfplay, gumbel_vs_puct, simulation_scaling")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	logLevel, err := zerolog.ParseLevel(*level)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(logLevel)

	var dir string
	switch *experiment {
	case "selfplay":
		dir, err = runSelfPlay(*configPath, *numGames, *outDir)
	case "gumbel_vs_puct":
		dir, err = experiments.RunGumbelVersusPUCT(*numGames, *outDir)
	case "simulation_scaling":
		dir, err = experiments.RunSimulationScaling(*numGames, *outDir)
	default:
		log.Fatal().Msgf("unknown experiment %q", *experiment)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s experiment failed", *experiment)
	}
	log.Info().Msgf("records written to %s", dir)
}

// runSelfPlay plays the configured agent against itself.
func runSelfPlay(configPath string, numGames int, outDir string) (string, error) {
	a := config.Default()
	if configPath != "" {
		var err error
		a, err = config.Load(configPath)
		if err != nil {
			return "", err
		}
	}
	log.Info().Msgf("self-play with gumbel=%v simulations=%d rollouts=%d", a.Search.UseGumbel, a.Search.NumSimulations, a.Rollouts)

	agentConfig := metrics.AgentConfig{ID: 1, Rollouts: a.Rollouts, Cutoff: a.Cutoff, Search: a.Search}
	return experiments.Run("selfplay", [][2]metrics.AgentConfig{{agentConfig, agentConfig}}, numGames, outDir)
}
