package cli

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/tilekeeper/internal/api/response"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Stage, score and commit plays",
	}

	cmd.AddCommand(newPlayProposeCmd())
	cmd.AddCommand(newPlayTileCmd())
	cmd.AddCommand(newPlayUntileCmd())
	cmd.AddCommand(newPlayPreviewCmd())
	cmd.AddCommand(newPlaySimpleCmd("clear", "Remove all staged tiles", http.MethodDelete, "/pending"))
	cmd.AddCommand(newPlaySimpleCmd("commit", "Score the staged tiles and pass the turn on", http.MethodPost, "/commit"))
	cmd.AddCommand(newPlaySimpleCmd("pass", "Pass the turn without playing", http.MethodPost, "/pass"))
	cmd.AddCommand(newPlaySimpleCmd("undo", "Take back the most recent play", http.MethodPost, "/undo"))

	return cmd
}

func parsePosition(rowArg, colArg string) (int, int, error) {
	row, err := strconv.Atoi(rowArg)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid row: %w", err)
	}
	col, err := strconv.Atoi(colArg)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid col: %w", err)
	}
	return row, col, nil
}

// parseDirection accepts h/v shorthands
func parseDirection(arg string) (string, error) {
	switch strings.ToLower(arg) {
	case "h", "horizontal", "across":
		return "horizontal", nil
	case "v", "vertical", "down":
		return "vertical", nil
	default:
		return "", fmt.Errorf("direction must be h or v, got %q", arg)
	}
}

func newPlayProposeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "propose <game-id> <row> <col> <h|v> <word>",
		Short: "Stage a whole word, including letters already on the board",
		Long: `Stage a whole word starting at row, col. Include letters already on the
board; only the new cells become tiles. Follow a letter with ? to mark it
blank, e.g. CA?T.`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, col, err := parsePosition(args[1], args[2])
			if err != nil {
				return err
			}
			dir, err := parseDirection(args[3])
			if err != nil {
				return err
			}

			req := map[string]any{"row": row, "col": col, "direction": dir, "word": strings.ToUpper(args[4])}
			return mutate(http.MethodPut, args[0], "/placement", req)
		},
	}
}

func newPlayTileCmd() *cobra.Command {
	var blank bool

	cmd := &cobra.Command{
		Use:   "tile <game-id> <row> <col> <letter>",
		Short: "Stage a single tile",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, col, err := parsePosition(args[1], args[2])
			if err != nil {
				return err
			}

			req := map[string]any{"row": row, "col": col, "letter": strings.ToUpper(args[3]), "blank": blank}
			return postMutation(args[0], "/pending", req)
		},
	}

	cmd.Flags().BoolVar(&blank, "blank", false, "The tile is a blank")

	return cmd
}

func newPlayUntileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "untile <game-id> <row> <col>",
		Short: "Remove one staged tile",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, col, err := parsePosition(args[1], args[2])
			if err != nil {
				return err
			}
			return mutate(http.MethodDelete, args[0], fmt.Sprintf("/pending/%d/%d", row, col), nil)
		},
	}
}

func newPlayPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <game-id>",
		Short: "Show what the staged tiles would score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Preview

			if err := client.Get(gamePath(strings.ToUpper(args[0]), "/preview"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlaySimpleCmd(use, short, method, suffix string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <game-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(method, args[0], suffix, nil)
		},
	}
}
