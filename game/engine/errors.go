package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Rule rejections. None of these is a fault: the caller may try a
// different action and no state has changed.
var (
	ErrGameOver           = errors.New("the game is over")
	ErrNotYourTurn        = errors.New("token does not belong to the player whose turn it is")
	ErrUnknownToken       = errors.New("token does not belong to this game")
	ErrOutOfBounds        = errors.New("cell is outside the board")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrNotStartingCell    = errors.New("cell is not a starting cell for this player")
	ErrNotEscapeCell      = errors.New("token is not standing on one of its escape cells")
	ErrTokenAlreadyPlaced = errors.New("token is already on the board")
	ErrTokenEscaped       = errors.New("token has already escaped")
	ErrTokenNotOnBoard    = errors.New("token is not on the board")
	ErrIllegalDestination = errors.New("destination is not a legal move for this token")
	ErrNoUnplacedToken    = errors.New("player has no unplaced tokens left")
	ErrNotSelectable      = errors.New("only a current player's token still in play can be selected")
)

var reasonCodes = map[error]string{
	ErrGameOver:           "game_over",
	ErrNotYourTurn:        "not_your_turn",
	ErrUnknownToken:       "unknown_token",
	ErrOutOfBounds:        "out_of_bounds",
	ErrCellOccupied:       "cell_occupied",
	ErrNotStartingCell:    "not_starting_cell",
	ErrNotEscapeCell:      "not_escape_cell",
	ErrTokenAlreadyPlaced: "token_already_placed",
	ErrTokenEscaped:       "token_escaped",
	ErrTokenNotOnBoard:    "token_not_on_board",
	ErrIllegalDestination: "illegal_destination",
	ErrNoUnplacedToken:    "no_unplaced_token",
	ErrNotSelectable:      "not_selectable",
}

// ReasonCode maps a rejection error to its stable wire code.
// Unknown errors map to "rejected".
func ReasonCode(err error) string {
	if err == nil {
		return ""
	}
	for sentinel, code := range reasonCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return "rejected"
}

// InvariantError reports a broken structural invariant. It signals a bug in
// the mutation discipline, never bad player input.
type InvariantError struct {
	Violations []string
}

func (e *InvariantError) Error() string {
	return "engine invariant violated: " + strings.Join(e.Violations, "; ")
}

func (e *InvariantError) add(format string, args ...any) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}
