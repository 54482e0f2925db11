package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAddCmd(root *rootOptions) *cobra.Command {
	var tag, contents string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a knowledge record",
		Long: `Add a (tag, contents) record and print its ID.

Empty strings are accepted for both fields. Identical records are stored
again rather than deduplicated.

Examples:
  knowledged add --tag "rust ownership" --contents "Each value has one owner"
  knowledged add --tag go --contents "$(cat notes.txt)" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, root, func(ctx context.Context, a *app) error {
				id, err := a.store.Add(ctx, tag, contents)
				if err != nil {
					return fmt.Errorf("failed to add knowledge: %w", err)
				}
				a.logger.Info(ctx, "knowledge added", zap.Int64("id", int64(id)))

				if a.json {
					return writeJSON(cmd.OutOrStdout(), map[string]int64{"id": int64(id)})
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "Record tag (required)")
	cmd.Flags().StringVar(&contents, "contents", "", "Record contents (required)")
	_ = cmd.MarkFlagRequired("tag")
	_ = cmd.MarkFlagRequired("contents")

	return cmd
}
