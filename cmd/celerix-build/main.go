package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/celerix-dev/celerix-build/pkg/client"
	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// remote holds the connection flags shared by API commands.
type remote struct {
	addr     string
	user     string
	name     string
	role     string
	insecure bool
}

func (r *remote) client() *client.Client {
	actor := schema.Actor{ID: r.user, Name: r.name, Role: schema.Role(r.role)}
	var opts []client.Option
	if r.insecure {
		opts = append(opts, client.WithInsecureTLS())
	}
	return client.New(r.addr, actor, opts...)
}

func newRootCmd() *cobra.Command {
	r := &remote{}

	root := &cobra.Command{
		Use:           "celerix-build",
		Short:         "Command line tools for the celerix-build API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addr := os.Getenv("CELERIX_BUILD_URL")
	if addr == "" {
		addr = "http://localhost:7080"
	}
	flags := root.PersistentFlags()
	flags.StringVar(&r.addr, "addr", addr, "daemon base URL (env CELERIX_BUILD_URL)")
	flags.StringVar(&r.user, "user", "cli", "user id sent as X-User-ID")
	flags.StringVar(&r.name, "name", "", "display name sent as X-User-Name")
	flags.StringVar(&r.role, "role", string(schema.RoleOwner), "role sent as X-User-Role")
	flags.BoolVar(&r.insecure, "insecure", false, "accept the daemon's self-signed certificate")

	root.AddCommand(
		newMigrateCmd(),
		newPingCmd(r),
		newProjectsCmd(r),
		newMaterialsCmd(r),
		newOrdersCmd(r),
		newPortfolioCmd(r),
	)
	return root
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
