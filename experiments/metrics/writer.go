package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gumbelzero/searcher"
)

// AgentConfig is one searching agent taking part in an experiment.
type AgentConfig struct {
	ID       int
	Rollouts int // Random playouts per oracle call
	Cutoff   int // Playout depth limit, 0 for none
	Search   searcher.Config
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID playing Player1
	Agent2 int // AgentConfig.ID playing Player2
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Setup struct {
	Name      string        `json:"name"`
	Matchups  [][]int       `json:"matchups"` // AgentConfig.IDs
	NumGames  int           `json:"numGames"` // per matchup
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`
}

type Writer struct {
	baseDir string
}

func NewWriter(outDir, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(outDir, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) BaseDir() string {
	return w.baseDir
}

func (w *Writer) WriteSetup(setup Setup) error {
	path := filepath.Join(w.baseDir, "setup.json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create setup file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(setup); err != nil {
		return fmt.Errorf("failed to write setup: %w", err)
	}

	return nil
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{
		"id", "use_gumbel", "num_simulations", "puct_init", "puct_base", "reward_discount",
		"value_rescale", "resign_threshold", "gumbel_sample_size", "gumbel_sigma_visit_c",
		"gumbel_sigma_scale_c", "gumbel_noise", "action_selection", "softmax_temperature", "rollouts", "cutoff", "seed",
	}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		c := config.Search
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			strconv.FormatBool(c.UseGumbel),
			strconv.Itoa(c.NumSimulations),
			formatFloat(c.PUCTInit),
			formatFloat(c.PUCTBase),
			formatFloat(c.RewardDiscount),
			strconv.FormatBool(c.ValueRescale),
			formatFloat(c.ResignThreshold),
			strconv.Itoa(c.GumbelSampleSize),
			formatFloat(c.GumbelSigmaVisitC),
			formatFloat(c.GumbelSigmaScaleC),
			strconv.FormatBool(c.GumbelNoise),
			c.ActionSelection.String(),
			formatFloat(c.SoftmaxTemperature),
			strconv.Itoa(config.Rollouts),
			strconv.Itoa(config.Cutoff),
			strconv.FormatUint(c.Seed, 10),
		})
	}
	return w.writeCSV("agent_configs.csv", "agent configs", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{
		"id", "agent1", "agent2", "starting_player", "winner", "resigned",
		"start_time", "end_time", "duration", "total_moves",
	}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			record.StartingPlayer.String(),
			record.Winner.String(),
			strconv.FormatBool(record.Resigned),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
		})
	}
	return w.writeCSV("game_records.csv", "game records", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{
		"game", "step", "player", "action", "resign", "duration", "simulations", "oracle_calls",
		"terminal_leaves", "halving_rounds", "tree_size", "search_distribution", "completed_policy",
	}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			record.Player.String(),
			strconv.Itoa(record.Action),
			strconv.FormatBool(record.Resign),
			record.Duration.String(),
			strconv.Itoa(record.Simulations),
			strconv.Itoa(record.OracleCalls),
			strconv.Itoa(record.TerminalLeaves),
			strconv.Itoa(record.HalvingRounds),
			strconv.Itoa(record.TreeSize),
			record.SearchDistribution,
			record.CompletedPolicy,
		})
	}
	return w.writeCSV("move_records.csv", "move records", header, rows)
}

func (w *Writer) writeCSV(filename, what string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", what, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	// Write header
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", what, err)
	}

	// Write each row
	for _, row := range rows {
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write %s row: %w", what, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", what, err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
