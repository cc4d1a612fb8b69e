package game

// Player identifies the side that made an action. Values are always reported
// from Player1's perspective and flipped for Player2.
type Player int8

const (
	PlayerNone Player = iota
	Player1
	Player2
)

func (p Player) Next() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return PlayerNone
	}
}

// Sign is +1 for Player1 and -1 for anyone else.
func (p Player) Sign() float64 {
	if p == Player1 {
		return 1
	}
	return -1
}

func (p Player) String() string {
	switch p {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return "none"
	}
}

// Action is a move tagged with the player who made it.
type Action struct {
	ID     int
	Player Player
}

// State should be immutable - Play always returns a new copy
type State interface {
	ToMove() Player
	LegalActions() []Action
	Play(Action) State
	IsTerminal() bool
	// Value is the outcome of a terminal state from Player1's perspective.
	Value() float64
}

// Candidate is an action proposed by an oracle for expansion.
type Candidate struct {
	Action Action
	Policy float64
	Logit  float64
}

// Evaluation is what an oracle knows about a leaf: its value from Player1's
// perspective, the reward collected on the edge into it, and the actions to expand.
type Evaluation struct {
	Value      float64
	Reward     float64
	Candidates []Candidate
}

type Oracle interface {
	Evaluate(State) (Evaluation, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(State) (Evaluation, error)

func (f OracleFunc) Evaluate(s State) (Evaluation, error) {
	return f(s)
}
