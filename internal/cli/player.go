package cli

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Seat and manage players",
	}

	cmd.AddCommand(newPlayerAddCmd())
	cmd.AddCommand(newPlayerRemoveCmd())
	cmd.AddCommand(newPlayerRenameCmd())
	cmd.AddCommand(newPlayerOrderCmd())
	cmd.AddCommand(newPlayerCurrentCmd())
	cmd.AddCommand(newPlayerScoreCmd())

	return cmd
}

func newPlayerAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <game-id> <name>",
		Short: "Seat a player (before the game starts)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postMutation(args[0], "/players", map[string]string{"name": args[1]})
		},
	}
}

func newPlayerRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <game-id> <player-id>",
		Short: "Remove a player (before the game starts)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(http.MethodDelete, args[0], "/players/"+args[1], nil)
		},
	}
}

func newPlayerRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <game-id> <player-id> <name>",
		Short: "Rename a player",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(http.MethodPatch, args[0], "/players/"+args[1], map[string]string{"name": args[2]})
		},
	}
}

func newPlayerOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order <game-id> <player-id>...",
		Short: "Set the turn order; every player must be listed once",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(http.MethodPut, args[0], "/players/order", map[string][]string{"order": args[1:]})
		},
	}
}

func newPlayerCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current <game-id> <player-id>",
		Short: "Hand the turn to a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(http.MethodPut, args[0], "/current-player", map[string]string{"player_id": args[1]})
		},
	}
}

func newPlayerScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <game-id> <player-id> <score>",
		Short: "Correct a player's score by hand",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid score: %w", err)
			}
			return mutate(http.MethodPatch, args[0], "/players/"+args[1], map[string]int{"score": score})
		},
	}
}
