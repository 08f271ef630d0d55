// internal/game/gridmark.go
package game

import "encoding/json"

const (
	MarkX = "X"
	MarkO = "O"
)

// gridLines are the eight winning lines of a 3x3 board: rows, columns, diagonals.
var gridLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// GridMarkState is a 3x3 board indexed 0-8, row-major. The first player in
// room order plays X.
type GridMarkState struct {
	Kind  Kind              `json:"kind"`
	Board [9]string         `json:"board"`
	Marks map[string]string `json:"marks"` // player -> X|O
	Moves int               `json:"moves"`
}

func newGridMark(players []string) *GridMarkState {
	return &GridMarkState{
		Kind:  KindGridMark,
		Marks: map[string]string{players[0]: MarkX, players[1]: MarkO},
	}
}

func (s *GridMarkState) kind() Kind { return KindGridMark }

func (s *GridMarkState) clone() State {
	c := *s
	c.Marks = cloneStrings(s.Marks)
	return &c
}

func (s *GridMarkState) apply(actor string, move json.RawMessage) (Result, error) {
	mark, ok := s.Marks[actor]
	if !ok {
		return Result{}, ErrNotPlayer
	}
	var cell int
	if err := json.Unmarshal(move, &cell); err != nil {
		return Result{}, invalidMove("cell must be an integer 0-8")
	}
	if cell < 0 || cell >= len(s.Board) {
		return Result{}, invalidMove("cell %d is out of range", cell)
	}
	if s.Board[cell] != "" {
		return Result{}, invalidMove("cell %d is occupied", cell)
	}

	next := s.clone().(*GridMarkState)
	next.Board[cell] = mark
	next.Moves++

	if m := next.lineWinner(); m != "" {
		return Result{State: next, GameOver: true, Winner: ownerOf(next.Marks, m), Reason: ReasonWin}, nil
	}
	if next.Moves == len(next.Board) {
		return Result{State: next, GameOver: true, Reason: ReasonDraw}, nil
	}
	return Result{State: next}, nil
}

// lineWinner returns the mark completing any line, or "".
func (s *GridMarkState) lineWinner() string {
	for _, line := range gridLines {
		a := s.Board[line[0]]
		if a != "" && a == s.Board[line[1]] && a == s.Board[line[2]] {
			return a
		}
	}
	return ""
}
