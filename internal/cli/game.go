package cli

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/tilekeeper/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameActionCmd("start", "Start the game with the seated players", "/start"))
	cmd.AddCommand(newGameActionCmd("reset", "Start over with the same players", "/reset"))
	cmd.AddCommand(newGameActionCmd("full-reset", "Start over with no players", "/full-reset"))
	cmd.AddCommand(newGameActionCmd("finish", "Archive the game and start over with the same players", "/finish"))
	cmd.AddCommand(newGameDeleteCmd())

	return cmd
}

func gamePath(id, suffix string) string {
	return "/api/v1/games/" + id + suffix
}

func newGameCreateCmd() *cobra.Command {
	var languages []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new game and save its table key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string][]string{"languages": languages}
			var result response.CreatedGame

			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveKey(result.Game.ID, result.TableKey); err != nil {
				return fmt.Errorf("save table key: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			if cfg.Output != "json" {
				out.PrintMessage("Key saved to " + filepath.Join(cfg.KeyDir, result.Game.ID))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&languages, "lang", nil, "Letter sets to add to English, e.g. de,fr")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get current game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game

			if err := client.Get(gamePath(strings.ToUpper(args[0]), ""), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameList

			if err := client.Get("/api/v1/games", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

// newGameActionCmd builds a command that posts to a key-protected game route
func newGameActionCmd(use, short, suffix string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postMutation(args[0], suffix, nil)
		},
	}
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a live game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.ToUpper(args[0])
			if err := useKey(id); err != nil {
				return err
			}

			if err := client.Delete(gamePath(id, ""), nil); err != nil {
				return err
			}
			if err := cfg.RemoveKey(id); err != nil {
				return fmt.Errorf("remove table key: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Game deleted")
			return nil
		},
	}
}

// mutate sends a key-protected request and prints the resulting game
func mutate(method, id, suffix string, body any) error {
	id = strings.ToUpper(id)
	if err := useKey(id); err != nil {
		return err
	}

	var result response.Mutation
	if err := client.Do(method, gamePath(id, suffix), body, &result); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	out.Print(result)
	return nil
}

func postMutation(id, suffix string, body any) error {
	return mutate(http.MethodPost, id, suffix, body)
}
