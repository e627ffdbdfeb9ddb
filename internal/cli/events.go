package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/tilekeeper/internal/api/response"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <game-id>",
		Short: "Stream live updates for a game",
		Long: `Connect to the game's SSE endpoint and stream events in real-time.

Events include:
  - game_updated: Anything about the game changed
  - play_committed: A play was scored
  - play_undone: The last play was taken back
  - game_finished: The game was archived
  - game_deleted: The game is gone; the stream ends

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(strings.ToUpper(args[0]), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// Full game states can outgrow the scanner's default line limit
const maxEventSize = 1 << 20

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(gameID string, jsonOutput bool) error {
	url := strings.TrimSuffix(cfg.ServerURL, "/") + gamePath(gameID, "/events")

	// Create request
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// Set up cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	req = req.WithContext(ctx)

	// Make request
	httpClient := &http.Client{
		Timeout: 0, // No timeout for SSE
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Code != "" {
			return fmt.Errorf("%s", errResp.Error.String())
		}
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Printf("Watching game %s\n", gameID)
	}

	// Parse SSE stream
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxEventSize)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "event: ") {
			currentEvent = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		} else if line == "" {
			// End of event
			if currentEvent != "" {
				data := strings.Join(dataLines, "\n")
				printEvent(currentEvent, data, jsonOutput)
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil {
		// Context cancellation is expected
		if ctx.Err() != nil {
			if !jsonOutput {
				fmt.Println("\nDisconnected")
			}
			return nil
		}
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

func printEvent(event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := SSEEvent{
			Time:  now,
			Event: event,
			Data:  data,
		}
		jsonData, _ := json.Marshal(evt)
		fmt.Println(string(jsonData))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	fmt.Printf("[%s] %s: %s\n", timestamp, event, summarizeEvent(data))
}

// summarizeEvent renders one line for an event payload
func summarizeEvent(data string) string {
	var evt response.Event
	if err := json.Unmarshal([]byte(data), &evt); err != nil || evt.Type == "" {
		summary := strings.ReplaceAll(data, "\n", " ")
		if len(summary) > 100 {
			summary = summary[:100] + "..."
		}
		return summary
	}

	switch {
	case evt.Play != nil:
		return fmt.Sprintf("%s %d: %s", evt.Play.PlayerID, evt.Play.Score, formatWords(evt.Play.Words))
	case evt.Game != nil:
		scores := make([]string, len(evt.Game.Players))
		for i, p := range evt.Game.Players {
			scores[i] = fmt.Sprintf("%s %d", p.Name, p.Score)
		}
		return fmt.Sprintf("%s, turn %d, %s", evt.Game.State, evt.Game.TurnCount, strings.Join(scores, ", "))
	case evt.ArchiveID != 0:
		return fmt.Sprintf("archived as #%d, %s won with %d", evt.ArchiveID, evt.Winner, evt.TopScore)
	default:
		return evt.GameID
	}
}
