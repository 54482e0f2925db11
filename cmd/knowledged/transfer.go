package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/knowledged/internal/knowledge"
)

// maxImportLine bounds one JSON Lines record.
const maxImportLine = 16 * 1024 * 1024

func newImportCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Import records from JSON Lines",
		Long: `Import records from a JSON Lines file, or stdin when the argument is "-".

Each non-blank line is an object with "tag" and "contents" strings. A line
with a missing or null field stops the import; records before it stay stored.

Examples:
  knowledged import notes.jsonl
  knowledged export --db old.db | knowledged import --db new.db -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeIn()

			return run(cmd, root, func(ctx context.Context, a *app) error {
				n, err := importRecords(ctx, a.store, in)
				a.logger.Info(ctx, "knowledge imported", zap.Int("records", n))
				if err != nil {
					return fmt.Errorf("import stopped after %d records: %w", n, err)
				}

				if a.json {
					return writeJSON(cmd.OutOrStdout(), map[string]int{"imported": n})
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
				return err
			})
		},
	}
}

func openInput(cmd *cobra.Command, name string) (io.Reader, func(), error) {
	if name == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open import file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// importRecords adds one record per JSON line and returns how many were added.
func importRecords(ctx context.Context, store *knowledge.Store, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)

	imported := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req knowledge.AddRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			return imported, fmt.Errorf("line %d: invalid JSON: %w", lineNo, err)
		}
		if _, err := store.AddRequest(ctx, req); err != nil {
			return imported, fmt.Errorf("line %d: %w", lineNo, err)
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return imported, fmt.Errorf("line %d: %w", lineNo+1, err)
	}
	return imported, nil
}

func newExportCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export all records as JSON Lines",
		Long: `Write every record to stdout as JSON Lines, oldest first.

Examples:
  knowledged export > backup.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, root, func(ctx context.Context, a *app) error {
				records, err := a.store.Records(ctx)
				if err != nil {
					return fmt.Errorf("failed to export knowledge: %w", err)
				}

				w := bufio.NewWriter(cmd.OutOrStdout())
				enc := json.NewEncoder(w)
				for _, r := range records {
					if err := enc.Encode(r); err != nil {
						return err
					}
				}
				a.logger.Info(ctx, "knowledge exported", zap.Int("records", len(records)))
				return w.Flush()
			})
		},
	}
}
