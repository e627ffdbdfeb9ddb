package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mcoot/tilekeeper/internal/api/response"
)

// Layout notation for premium cells
const (
	cellTripleWord   = '='
	cellDoubleWord   = '-'
	cellTripleLetter = '"'
	cellDoubleLetter = '\''
	cellCenter       = '*'
)

var (
	tileStyle    = lipgloss.NewStyle().Bold(true)
	blankStyle   = lipgloss.NewStyle().Faint(true)
	pendingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11"))
	headerStyle  = lipgloss.NewStyle().Faint(true)
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))

	premiumStyles = map[rune]lipgloss.Style{
		cellTripleWord:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		cellDoubleWord:   lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		cellTripleLetter: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		cellDoubleLetter: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		cellCenter:       lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.CreatedGame:
		o.printGame(v.Game)
		fmt.Fprintf(o.w, "\nTable key: %s\n", v.TableKey)
	case response.Game:
		o.printGame(v)
	case response.Mutation:
		o.printMutation(v)
	case response.GameList:
		o.printGameList(v)
	case response.Preview:
		o.printPreview(v)
	case response.WordCheck:
		o.printWordCheck(v)
	case response.Letters:
		o.printLetters(v)
	case response.History:
		o.printHistory(v)
	case response.ArchivedGame:
		o.printArchivedGame(v)
	case response.Stats:
		o.printStats(v)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printGame(g response.Game) {
	fmt.Fprintf(o.w, "Game: %s\n", g.ID)
	fmt.Fprintf(o.w, "State: %s\n", g.State)
	if len(g.Languages) > 0 {
		fmt.Fprintf(o.w, "Languages: %s\n", strings.Join(g.Languages, ", "))
	}
	fmt.Fprintf(o.w, "Turn: %d\n", g.TurnCount)

	if len(g.Players) > 0 {
		fmt.Fprintf(o.w, "Players (%d):\n", len(g.Players))
		for _, p := range g.Players {
			marker := "  "
			name := p.Name
			if g.CurrentPlayer != nil && *g.CurrentPlayer == p.ID {
				marker = "> "
				name = currentStyle.Render(name)
			}
			fmt.Fprintf(o.w, "  %s%s (%s): %d\n", marker, name, p.ID, p.Score)
		}
	}

	fmt.Fprintln(o.w)
	fmt.Fprint(o.w, RenderBoard(g.Board, g.Pending))
}

func (o *Output) printMutation(m response.Mutation) {
	if !m.Changed {
		fmt.Fprintln(o.w, "No change")
		return
	}
	if m.Play != nil {
		fmt.Fprintf(o.w, "%s scored %d: %s\n", playerName(m.Game, m.Play.PlayerID), m.Play.Score, formatWords(m.Play.Words))
		if m.Play.Bingo {
			fmt.Fprintln(o.w, "Bingo!")
		}
	}
	if m.ArchiveID != 0 {
		fmt.Fprintf(o.w, "Archived as #%d\n", m.ArchiveID)
	}
	o.printGame(m.Game)
}

func (o *Output) printGameList(l response.GameList) {
	if len(l.Games) == 0 {
		fmt.Fprintln(o.w, "No games")
		return
	}
	for _, g := range l.Games {
		fmt.Fprintf(o.w, "%s  %-11s  turn %-3d  %s\n", g.ID, g.State, g.TurnCount, strings.Join(g.Players, ", "))
	}
}

func (o *Output) printPreview(p response.Preview) {
	if len(p.Words) == 0 {
		fmt.Fprintln(o.w, "Nothing staged")
		return
	}
	for _, w := range p.Words {
		fmt.Fprintf(o.w, "  %-15s %3d%s\n", w.Word, w.Score, validity(w.Valid))
	}
	if p.BingoBonus > 0 {
		fmt.Fprintf(o.w, "  %-15s %3d\n", "bingo", p.BingoBonus)
	}
	fmt.Fprintf(o.w, "Total: %d (%d new tiles)\n", p.Total, p.NewTiles)
}

func (o *Output) printWordCheck(c response.WordCheck) {
	switch {
	case !c.DictionaryLoaded:
		fmt.Fprintf(o.w, "%s: no dictionary loaded\n", c.Word)
	case c.Valid:
		fmt.Fprintf(o.w, "%s: valid\n", c.Word)
	default:
		fmt.Fprintf(o.w, "%s: not in dictionary\n", c.Word)
	}
}

func (o *Output) printLetters(l response.Letters) {
	if len(l.Languages) > 0 {
		fmt.Fprintf(o.w, "Languages: %s\n", strings.Join(l.Languages, ", "))
	}
	fmt.Fprintf(o.w, "Available: %s\n", strings.Join(l.Available, ", "))

	byValue := make(map[int][]string)
	for letter, value := range l.Values {
		byValue[value] = append(byValue[value], letter)
	}
	values := make([]int, 0, len(byValue))
	for v := range byValue {
		values = append(values, v)
	}
	sort.Ints(values)
	for _, v := range values {
		letters := byValue[v]
		sort.Strings(letters)
		fmt.Fprintf(o.w, "  %2d: %s\n", v, strings.Join(letters, " "))
	}
}

func (o *Output) printHistory(h response.History) {
	if len(h.Games) == 0 {
		fmt.Fprintln(o.w, "No finished games")
		return
	}
	for _, g := range h.Games {
		fmt.Fprintf(o.w, "#%-4d %s  %s won with %d  (%d turns, %d min)\n",
			g.ID, g.FinishedAt.Format("2006-01-02 15:04"), g.Winner, g.TopScore, g.TurnCount, g.DurationSeconds/60)
	}
}

func (o *Output) printArchivedGame(g response.ArchivedGame) {
	fmt.Fprintf(o.w, "Archive #%d (game %s)\n", g.ID, g.GameID)
	fmt.Fprintf(o.w, "Finished: %s\n", g.FinishedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(o.w, "Duration: %d min, %d turns\n", g.DurationSeconds/60, g.TurnCount)
	if g.Winner != "" {
		fmt.Fprintf(o.w, "Winner: %s (%d)\n", g.Winner, g.TopScore)
	}
	for _, p := range g.Players {
		fmt.Fprintf(o.w, "  %s: %d\n", p.Name, p.Score)
		for _, play := range p.Plays {
			fmt.Fprintf(o.w, "    %3d  %s\n", play.Score, formatWords(play.Words))
		}
	}
}

func (o *Output) printStats(s response.Stats) {
	fmt.Fprintf(o.w, "Games: %d started, %d finished\n", s.GamesStarted, s.GamesFinished)
	fmt.Fprintf(o.w, "Words: %d  Points: %d  Tiles: %d  Bingos: %d\n", s.Words, s.Points, s.Tiles, s.Bingos)
	fmt.Fprintf(o.w, "Players: %d  Play time: %d min\n", s.Players, s.PlayMinutes)
	if s.HighestWord != nil {
		fmt.Fprintf(o.w, "Highest word: %s (%d) by %s\n", s.HighestWord.Word, s.HighestWord.Score, s.HighestWord.Player)
	}
	if s.HighestScore != nil {
		fmt.Fprintf(o.w, "Highest score: %d by %s\n", s.HighestScore.Score, s.HighestScore.Name)
	}
	if s.FirstGameAt != nil && s.LastGameAt != nil {
		fmt.Fprintf(o.w, "Played %s to %s\n", s.FirstGameAt.Format("2006-01-02"), s.LastGameAt.Format("2006-01-02"))
	}
}

// RenderBoard draws the committed and staged tiles over the premium layout.
// Blanks are shown in lower case.
func RenderBoard(b response.Board, pending []response.Tile) string {
	size := b.Layout.Size
	if size == 0 {
		return ""
	}

	committed := make(map[response.Position]response.Tile, len(b.Tiles))
	for _, t := range b.Tiles {
		committed[response.Position{Row: t.Row, Col: t.Col}] = t
	}
	staged := make(map[response.Position]response.Tile, len(pending))
	for _, t := range pending {
		staged[response.Position{Row: t.Row, Col: t.Col}] = t
	}

	var sb strings.Builder

	// Column headers
	sb.WriteString("    ")
	for col := 0; col < size; col++ {
		sb.WriteString(headerStyle.Render(fmt.Sprintf("%2d", col)))
	}
	sb.WriteString("\n")

	for row := 0; row < size; row++ {
		sb.WriteString(headerStyle.Render(fmt.Sprintf("%2d", row)))
		sb.WriteString("  ")
		cells := []rune(b.Layout.Rows[row])
		for col := 0; col < size; col++ {
			pos := response.Position{Row: row, Col: col}
			sb.WriteString(" ")
			if t, ok := staged[pos]; ok {
				sb.WriteString(pendingStyle.Render(tileText(t)))
				continue
			}
			if t, ok := committed[pos]; ok {
				style := tileStyle
				if t.Blank {
					style = blankStyle
				}
				sb.WriteString(style.Render(tileText(t)))
				continue
			}
			sb.WriteString(premiumCell(cells, col))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func premiumCell(cells []rune, col int) string {
	if col >= len(cells) {
		return "."
	}
	style, ok := premiumStyles[cells[col]]
	if !ok {
		return "."
	}
	return style.Render(string(cells[col]))
}

func tileText(t response.Tile) string {
	if t.Blank {
		return strings.ToLower(t.Letter)
	}
	return t.Letter
}

func formatWords(words []response.WordScore) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = fmt.Sprintf("%s (%d)", w.Word, w.Score)
	}
	return strings.Join(parts, ", ")
}

func validity(valid *bool) string {
	switch {
	case valid == nil:
		return ""
	case *valid:
		return "  ok"
	default:
		return "  not in dictionary"
	}
}

func playerName(g response.Game, id string) string {
	for _, p := range g.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}
