package main

import (
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	matcher    string
	logLevel   string
	outputJSON bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "knowledged",
		Short: "Tag-indexed knowledge store",
		Long: `knowledged stores (tag, contents) records in a SQLite database and
retrieves contents by tag.

Retrieval uses one of two strategies:
  exact - records whose tag equals the query, oldest first
  bm25  - ranked lexical search over tags and contents (default)

Configuration is read from ~/.config/knowledged/config.yaml and
KNOWLEDGED_* environment variables; flags override both.`,
		Version:      version,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default ~/.config/knowledged/config.yaml)")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database path, or :memory: (overrides store.path)")
	flags.StringVar(&opts.matcher, "matcher", "", "Retrieval strategy: exact or bm25 (overrides matcher.strategy)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (overrides logging.level)")
	flags.BoolVar(&opts.outputJSON, "json", false, "Output results as JSON")

	cmd.AddCommand(
		newAddCmd(opts),
		newQueryCmd(opts),
		newGetCmd(opts),
		newCountCmd(opts),
		newClearCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
	)

	return cmd
}
