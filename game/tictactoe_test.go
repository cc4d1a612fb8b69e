package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func play(t *testing.T, ids ...int) State {
	t.Helper()
	var s State = NewTicTacToe()
	for _, id := range ids {
		s = s.Play(Action{ID: id, Player: s.ToMove()})
	}
	return s
}

func TestPlayer(t *testing.T) {
	require.Equal(t, Player2, Player1.Next())
	require.Equal(t, Player1, Player2.Next())
	require.Equal(t, PlayerNone, PlayerNone.Next())
	require.Equal(t, 1.0, Player1.Sign())
	require.Equal(t, -1.0, Player2.Sign())
	require.Equal(t, "player1", Player1.String())
	require.Equal(t, "none", PlayerNone.String())
}

func TestTicTacToe(t *testing.T) {
	t.Run("new game", func(t *testing.T) {
		s := NewTicTacToe()

		require.Equal(t, Player1, s.ToMove())
		require.Len(t, s.LegalActions(), 9)
		require.False(t, s.IsTerminal())
		require.Equal(t, ".../.../...", s.String())
	})

	t.Run("play is immutable", func(t *testing.T) {
		s := NewTicTacToe()

		next := s.Play(Action{ID: 4, Player: Player1})

		require.Len(t, s.LegalActions(), 9, "Original state should be untouched")
		require.Len(t, next.LegalActions(), 8)
		require.Equal(t, Player2, next.ToMove())
		for _, action := range next.LegalActions() {
			require.Equal(t, Player2, action.Player, "Actions should be tagged with the player to move")
		}
	})

	t.Run("illegal action panics", func(t *testing.T) {
		s := play(t, 4)

		require.Panics(t, func() { s.Play(Action{ID: 4, Player: Player2}) })
		require.Panics(t, func() { s.Play(Action{ID: 9, Player: Player2}) })
	})

	t.Run("player1 wins", func(t *testing.T) {
		s := play(t, 0, 3, 1, 4, 2)

		require.True(t, s.IsTerminal())
		require.Equal(t, 1.0, s.Value())
		require.Equal(t, Player1, s.(TicTacToe).Winner())
		require.Empty(t, s.LegalActions())
		require.Equal(t, "XXX/OO./...", s.(TicTacToe).String())
	})

	t.Run("player2 wins", func(t *testing.T) {
		s := play(t, 0, 2, 1, 4, 8, 6)

		require.True(t, s.IsTerminal())
		require.Equal(t, -1.0, s.Value())
	})

	t.Run("draw", func(t *testing.T) {
		s := play(t, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		require.True(t, s.IsTerminal())
		require.Zero(t, s.Value())
		require.Equal(t, PlayerNone, s.(TicTacToe).Winner())
	})
}
