package metrics

import (
	"sync/atomic"
	"time"

	"gumbelzero/game"
)

type SearchMetric struct {
	Duration       time.Duration
	Simulations    int
	OracleCalls    int
	TerminalLeaves int
	HalvingRounds  int
	TreeSize       int
}

type MoveMetric struct {
	Step               int
	Player             game.Player
	Action             int
	Resign             bool
	SearchDistribution string
	CompletedPolicy    string
	SearchMetric
}

type GameMetric struct {
	StartingPlayer game.Player
	Winner         game.Player // PlayerNone on a draw
	Resigned       bool
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start()
	AddSimulation()
	AddOracleCall()
	AddTerminalLeaf()
	AddHalvingRound()
	Complete(treeSize int) SearchMetric
}

type collector struct {
	startTime      time.Time
	simulations    atomic.Int32
	oracleCalls    atomic.Int32
	terminalLeaves atomic.Int32
	halvingRounds  atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

// Start begins a new search and clears the previous counts.
func (m *collector) Start() {
	m.startTime = time.Now()
	m.simulations.Store(0)
	m.oracleCalls.Store(0)
	m.terminalLeaves.Store(0)
	m.halvingRounds.Store(0)
}

func (m *collector) AddSimulation() {
	m.simulations.Add(1)
}

func (m *collector) AddOracleCall() {
	m.oracleCalls.Add(1)
}

func (m *collector) AddTerminalLeaf() {
	m.terminalLeaves.Add(1)
}

func (m *collector) AddHalvingRound() {
	m.halvingRounds.Add(1)
}

func (m *collector) Complete(treeSize int) SearchMetric {
	return SearchMetric{
		Duration:       time.Since(m.startTime),
		Simulations:    int(m.simulations.Load()),
		OracleCalls:    int(m.oracleCalls.Load()),
		TerminalLeaves: int(m.terminalLeaves.Load()),
		HalvingRounds:  int(m.halvingRounds.Load()),
		TreeSize:       treeSize,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start()                             {}
func (m *dummyCollector) AddSimulation()                     {}
func (m *dummyCollector) AddOracleCall()                     {}
func (m *dummyCollector) AddTerminalLeaf()                   {}
func (m *dummyCollector) AddHalvingRound()                   {}
func (m *dummyCollector) Complete(treeSize int) SearchMetric { return SearchMetric{} }
