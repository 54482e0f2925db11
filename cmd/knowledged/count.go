package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCountCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, root, func(ctx context.Context, a *app) error {
				n, err := a.store.Count(ctx)
				if err != nil {
					return fmt.Errorf("failed to count knowledge: %w", err)
				}
				if a.json {
					return writeJSON(cmd.OutOrStdout(), map[string]int{"count": n})
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
				return err
			})
		},
	}
}

func newClearCmd(root *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every record",
		Long: `Delete every record in the database. Record IDs are not reused
afterwards.

Examples:
  knowledged clear --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			return run(cmd, root, func(ctx context.Context, a *app) error {
				removed, err := a.store.Clear(ctx)
				if err != nil {
					return fmt.Errorf("failed to clear knowledge: %w", err)
				}
				a.logger.Info(ctx, "knowledge cleared", zap.Int64("removed", removed))

				if a.json {
					return writeJSON(cmd.OutOrStdout(), map[string]int64{"removed": removed})
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d records\n", removed)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion of all records")

	return cmd
}
