// internal/game/connectfour.go
package game

import "encoding/json"

const (
	ConnectFourRows = 6
	ConnectFourCols = 7
	connectLength   = 4

	TokenRed    = "R"
	TokenYellow = "Y"
)

// scan directions: vertical, horizontal and both diagonals. Each is walked in
// both signs from the placed token.
var connectDirs = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// Position addresses a board cell.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ConnectFourState is a 6x7 board; row 0 is the top. The first player in room
// order plays red.
type ConnectFourState struct {
	Kind   Kind                                     `json:"kind"`
	Board  [ConnectFourRows][ConnectFourCols]string `json:"board"`
	Tokens map[string]string                        `json:"tokens"` // player -> R|Y
	Moves  int                                      `json:"moves"`
	Last   *Position                                `json:"last,omitempty"`
}

func newConnectFour(players []string) *ConnectFourState {
	return &ConnectFourState{
		Kind:   KindConnectFour,
		Tokens: map[string]string{players[0]: TokenRed, players[1]: TokenYellow},
	}
}

func (s *ConnectFourState) kind() Kind { return KindConnectFour }

func (s *ConnectFourState) clone() State {
	c := *s
	c.Tokens = cloneStrings(s.Tokens)
	if s.Last != nil {
		last := *s.Last
		c.Last = &last
	}
	return &c
}

func (s *ConnectFourState) apply(actor string, move json.RawMessage) (Result, error) {
	token, ok := s.Tokens[actor]
	if !ok {
		return Result{}, ErrNotPlayer
	}
	var col int
	if err := json.Unmarshal(move, &col); err != nil {
		return Result{}, invalidMove("column must be an integer 0-%d", ConnectFourCols-1)
	}
	if col < 0 || col >= ConnectFourCols {
		return Result{}, invalidMove("column %d is out of range", col)
	}
	if s.Board[0][col] != "" {
		return Result{}, invalidMove("column %d is full", col)
	}

	next := s.clone().(*ConnectFourState)
	row := next.drop(col, token)
	next.Moves++
	next.Last = &Position{Row: row, Col: col}

	if next.connects(row, col) {
		return Result{State: next, GameOver: true, Winner: actor, Reason: ReasonWin}, nil
	}
	if next.topRowFull() {
		return Result{State: next, GameOver: true, Reason: ReasonDraw}, nil
	}
	return Result{State: next}, nil
}

// drop lets token fall to the lowest empty row of col and returns that row.
// The caller has already checked the column has room.
func (s *ConnectFourState) drop(col int, token string) int {
	for r := ConnectFourRows - 1; r >= 0; r-- {
		if s.Board[r][col] == "" {
			s.Board[r][col] = token
			return r
		}
	}
	return -1
}

// connects reports whether the token at (row, col) is part of a line of four.
func (s *ConnectFourState) connects(row, col int) bool {
	token := s.Board[row][col]
	if token == "" {
		return false
	}
	for _, d := range connectDirs {
		count := 1 + s.run(row, col, d[0], d[1], token) + s.run(row, col, -d[0], -d[1], token)
		if count >= connectLength {
			return true
		}
	}
	return false
}

// run counts consecutive tokens from (row, col), exclusive, stepping by (dr, dc).
func (s *ConnectFourState) run(row, col, dr, dc int, token string) int {
	n := 0
	for r, c := row+dr, col+dc; r >= 0 && r < ConnectFourRows && c >= 0 && c < ConnectFourCols; r, c = r+dr, c+dc {
		if s.Board[r][c] != token {
			break
		}
		n++
	}
	return n
}

func (s *ConnectFourState) topRowFull() bool {
	for c := 0; c < ConnectFourCols; c++ {
		if s.Board[0][c] == "" {
			return false
		}
	}
	return true
}
