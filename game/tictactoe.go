package game

import "strings"

var tictactoeLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// TicTacToe is a small perfect-information game used to drive the search end to end.
type TicTacToe struct {
	board  [9]Player
	toMove Player
	winner Player
	moves  int
}

func NewTicTacToe() TicTacToe {
	return TicTacToe{toMove: Player1}
}

func (t TicTacToe) ToMove() Player {
	return t.toMove
}

func (t TicTacToe) LegalActions() []Action {
	if t.IsTerminal() {
		return nil
	}
	actions := make([]Action, 0, 9-t.moves)
	for i, cell := range t.board {
		if cell == PlayerNone {
			actions = append(actions, Action{ID: i, Player: t.toMove})
		}
	}
	return actions
}

func (t TicTacToe) Play(action Action) State {
	if action.ID < 0 || action.ID >= len(t.board) || t.board[action.ID] != PlayerNone {
		panic("illegal tic-tac-toe action")
	}
	t.board[action.ID] = t.toMove
	t.moves++
	for _, line := range tictactoeLines {
		if t.board[line[0]] == t.toMove && t.board[line[1]] == t.toMove && t.board[line[2]] == t.toMove {
			t.winner = t.toMove
			break
		}
	}
	t.toMove = t.toMove.Next()
	return t
}

func (t TicTacToe) IsTerminal() bool {
	return t.winner != PlayerNone || t.moves == len(t.board)
}

func (t TicTacToe) Value() float64 {
	switch t.winner {
	case Player1:
		return 1
	case Player2:
		return -1
	default:
		return 0
	}
}

func (t TicTacToe) Winner() Player {
	return t.winner
}

func (t TicTacToe) String() string {
	var sb strings.Builder
	for i, cell := range t.board {
		switch cell {
		case Player1:
			sb.WriteByte('X')
		case Player2:
			sb.WriteByte('O')
		default:
			sb.WriteByte('.')
		}
		if i%3 == 2 && i < len(t.board)-1 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}
