package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/tilekeeper/internal/model"
)

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	Languages []string `json:"languages,omitempty"`
}

// AddPlayerRequest is the request body for seating a player
type AddPlayerRequest struct {
	Name string `json:"name"`
}

// UpdatePlayerRequest is the request body for renaming a player or
// correcting their score. Either field may be omitted.
type UpdatePlayerRequest struct {
	Name  *string `json:"name,omitempty"`
	Score *int    `json:"score,omitempty"`
}

// ReorderPlayersRequest is the request body for setting the rotation
type ReorderPlayersRequest struct {
	Order []string `json:"order"`
}

// PlayerIDs returns the order as model IDs
func (r ReorderPlayersRequest) PlayerIDs() []model.PlayerID {
	ids := make([]model.PlayerID, len(r.Order))
	for i, id := range r.Order {
		ids[i] = model.PlayerID(id)
	}
	return ids
}

// SetCurrentPlayerRequest is the request body for handing over the turn
type SetCurrentPlayerRequest struct {
	PlayerID string `json:"player_id"`
}

// PlacementRequest is the request body for proposing a whole word. Word is
// tile notation: a ? after a letter marks it as a blank.
type PlacementRequest struct {
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Direction string `json:"direction"`
	Word      string `json:"word"`
}

// ToModel parses the request into a placement
func (r PlacementRequest) ToModel() (model.Placement, error) {
	dir := model.Direction(strings.ToLower(r.Direction))
	if !dir.IsValid() {
		return model.Placement{}, model.ErrBadDirection
	}
	tiles, err := model.ParseTiles(r.Word)
	if err != nil {
		return model.Placement{}, err
	}
	return model.Placement{
		Start:     model.Position{Row: r.Row, Col: r.Col},
		Direction: dir,
		Tiles:     tiles,
	}, nil
}

// TileRequest is the request body for staging a single tile
type TileRequest struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Letter string `json:"letter"`
	Blank  bool   `json:"blank,omitempty"`
}

// ToModel parses the request into a position and tile
func (r TileRequest) ToModel() (model.Position, model.Tile, error) {
	if utf8.RuneCountInString(r.Letter) != 1 {
		return model.Position{}, model.Tile{}, fmt.Errorf("%w: %q", model.ErrInvalidLetter, r.Letter)
	}
	tiles, err := model.ParseTiles(r.Letter)
	if err != nil {
		return model.Position{}, model.Tile{}, err
	}
	return model.Position{Row: r.Row, Col: r.Col}, model.NewTile(tiles[0].Letter, r.Blank), nil
}
