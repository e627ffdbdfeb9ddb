package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/tilekeeper/internal/api/response"
)

func newWordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "word",
		Short: "Dictionary lookups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check <word>",
		Short: "Check a word against the server's dictionary (advisory only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.WordCheck

			if err := client.Get("/api/v1/words/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	})

	return cmd
}

func newLettersCmd() *cobra.Command {
	var languages []string

	cmd := &cobra.Command{
		Use:   "letters",
		Short: "Show letter values, optionally with language sets added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/letters"
			if len(languages) > 0 {
				path += "?lang=" + url.QueryEscape(strings.Join(languages, ","))
			}

			var result response.Letters
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&languages, "lang", nil, "Letter sets to add to English, e.g. de,fr")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [archive-id]",
		Short: "List finished games, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if len(args) == 1 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid archive id: %w", err)
				}
				var result response.ArchivedGame
				if err := client.Get(fmt.Sprintf("/api/v1/history/%d", id), &result); err != nil {
					return err
				}
				out.Print(result)
				return nil
			}

			path := "/api/v1/history"
			if limit > 0 {
				path += "?limit=" + strconv.Itoa(limit)
			}
			var result response.History
			if err := client.Get(path, &result); err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of games to list (server caps at 50)")

	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show totals across all finished games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Stats

			if err := client.Get("/api/v1/stats", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
