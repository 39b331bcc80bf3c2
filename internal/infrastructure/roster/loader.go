package roster

import (
	"fmt"
	"os"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/tomaldridge12/loanbot/internal/domain/player"
)

// entry is one roster record keyed by player name in the roster file:
//
//	{"Jobe Bellingham": {"id": 712375, "team_id": 8472, "team_name": "Sunderland"}}
type entry struct {
	ID       int64  `json:"id" validate:"required,gt=0"`
	TeamID   int64  `json:"team_id" validate:"required,gt=0"`
	TeamName string `json:"team_name" validate:"required"`
}

// Load reads the roster file and returns the tracked players sorted by
// name, so scan order is stable across runs. An empty roster is an error;
// there is nothing for the process to do without one.
func Load(path string) ([]*player.Player, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) ([]*player.Player, error) {
	var entries map[string]entry
	if err := sonic.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("roster is empty")
	}

	validate := validator.New()
	seen := make(map[int64]string, len(entries))

	players := make([]*player.Player, 0, len(entries))
	for name, e := range entries {
		if name == "" {
			return nil, fmt.Errorf("roster entry with empty player name")
		}
		if err := validate.Struct(e); err != nil {
			return nil, fmt.Errorf("roster entry %q: %w", name, err)
		}
		if prior, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("roster entries %q and %q share player id %d", prior, name, e.ID)
		}
		seen[e.ID] = name
		players = append(players, player.New(name, e.ID, e.TeamID, e.TeamName))
	}

	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })
	return players, nil
}
