package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newQueryCmd(root *rootOptions) *cobra.Command {
	var topN int

	cmd := &cobra.Command{
		Use:   "query <tag>",
		Short: "Retrieve contents matching a tag",
		Long: `Print the contents of the most relevant records for a tag, one per line,
most relevant first. Nothing is printed when no record matches.

Examples:
  knowledged query rust
  knowledged query "memory safety" --top-n 3
  knowledged query go --matcher exact --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, root, func(ctx context.Context, a *app) error {
				n := topN
				if !cmd.Flags().Changed("top-n") {
					n = a.cfg.Matcher.DefaultTopN
				}

				results, err := a.store.Query(ctx, args[0], n)
				if err != nil {
					return fmt.Errorf("failed to query knowledge: %w", err)
				}

				if a.json {
					return writeJSON(cmd.OutOrStdout(), results)
				}
				return writeLines(cmd.OutOrStdout(), results)
			})
		},
	}

	cmd.Flags().IntVarP(&topN, "top-n", "n", 0, "Maximum number of results (default matcher.default_top_n)")

	return cmd
}

func newGetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <tag>",
		Short: "Retrieve the single best match for a tag",
		Long: `Print the contents of the most relevant record for a tag.
Exits with an error when nothing matches.

Examples:
  knowledged get "rust ownership"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, root, func(ctx context.Context, a *app) error {
				contents, ok, err := a.store.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get knowledge: %w", err)
				}
				if !ok {
					return fmt.Errorf("no knowledge found for tag %q", args[0])
				}

				if a.json {
					return writeJSON(cmd.OutOrStdout(), map[string]string{"contents": contents})
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), contents)
				return err
			})
		},
	}
}
