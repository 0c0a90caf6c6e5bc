package main

import (
	"fmt"
	"strings"

	"github.com/celerix-dev/celerix-build/internal/engine"
	"github.com/spf13/cobra"
)

// parseLocation splits "backend:path" as in json:./data or sqlite:./build.db.
func parseLocation(s string) (backend, path string, err error) {
	backend, path, _ = strings.Cut(s, ":")
	backend = strings.ToLower(strings.TrimSpace(backend))
	switch backend {
	case engine.BackendJSON, engine.BackendSQLite:
		if path == "" {
			return "", "", fmt.Errorf("%q needs a path, e.g. %s:./data", s, backend)
		}
	case engine.BackendMemory:
	default:
		return "", "", fmt.Errorf("unknown backend in %q (want json, sqlite or memory)", s)
	}
	return backend, path, nil
}

func newMigrateCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:     "migrate",
		Short:   "Copy every collection from one store to another",
		Example: "  celerix-build migrate --from json:./data --to sqlite:./data/build.db",
		RunE: func(cmd *cobra.Command, args []string) error {
			srcBackend, srcPath, err := parseLocation(from)
			if err != nil {
				return err
			}
			dstBackend, dstPath, err := parseLocation(to)
			if err != nil {
				return err
			}

			src, err := engine.Open(srcBackend, srcPath)
			if err != nil {
				return fmt.Errorf("opening source: %w", err)
			}
			defer src.Close()

			dst, err := engine.Open(dstBackend, dstPath)
			if err != nil {
				return fmt.Errorf("opening destination: %w", err)
			}

			n, err := engine.Migrate(cmd.Context(), src, dst)
			if err != nil {
				dst.Close()
				return err
			}
			if err := dst.Close(); err != nil {
				return fmt.Errorf("flushing destination: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d documents from %s to %s\n", n, from, to)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "json:./data", "source store as backend:path")
	cmd.Flags().StringVar(&to, "to", "", "destination store as backend:path")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
