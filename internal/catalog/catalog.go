// internal/catalog/catalog.go
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Catalog is the read-only table of known games. It is built once at startup
// and never mutated afterwards, so it is safe to share.
type Catalog struct {
	games map[string]Rules
}

// builtin is the default game table shipped with the server.
var builtin = []Rules{
	{ID: "tic-tac-toe", MinPlayers: 2, MaxPlayers: 2, TurnBased: true, Ruleset: RulesetGridMark},
	{ID: "connect-four", MinPlayers: 2, MaxPlayers: 2, TurnBased: true, Ruleset: RulesetConnectFour},
	{ID: "rock-paper-scissors", MinPlayers: 2, MaxPlayers: 2, TurnBased: true, Ruleset: RulesetHandGame, Rounds: 3},
	{ID: "snake", MinPlayers: 2, MaxPlayers: 2, ScoreCompetition: true, TimeLimitSeconds: 120},
	{ID: "tetris", MinPlayers: 2, MaxPlayers: 2, ScoreCompetition: true, TimeLimitSeconds: 180},
	{ID: "flappy-bird", MinPlayers: 2, MaxPlayers: 2, ScoreCompetition: true, TimeLimitSeconds: 90},
	{ID: "2048", MinPlayers: 2, MaxPlayers: 2, ScoreCompetition: true, TimeLimitSeconds: 300},
	{ID: "pong", MinPlayers: 2, MaxPlayers: 2},
}

// New builds a catalog from the given descriptors. Later entries replace
// earlier ones with the same id.
func New(games ...Rules) (*Catalog, error) {
	c := &Catalog{games: make(map[string]Rules, len(games))}
	for _, g := range games {
		if err := g.Validate(); err != nil {
			return nil, err
		}
		c.games[g.ID] = g
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(builtin...)
	if err != nil {
		// the built-in table is static; a failure here is a programming error
		panic(err)
	}
	return c
}

// catalogFile is the on-disk overlay format.
type catalogFile struct {
	Games []Rules `yaml:"games"`
}

// LoadFile returns the built-in catalog overlaid with the games listed in a
// YAML file. An empty path yields the built-in catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return New(append(append([]Rules{}, builtin...), f.Games...)...)
}

// Lookup returns the descriptor for a game id.
func (c *Catalog) Lookup(gameID string) (Rules, error) {
	r, ok := c.games[gameID]
	if !ok {
		return Rules{}, fmt.Errorf("%w: %q", ErrUnknownGame, gameID)
	}
	if r.Ruleset == RulesetHandGame && r.Rounds <= 0 {
		r.Rounds = 3
	}
	return r, nil
}

// IDs lists every registered game id in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.games))
	for id := range c.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
