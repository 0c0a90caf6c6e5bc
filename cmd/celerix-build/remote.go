package main

import (
	"fmt"

	"github.com/celerix-dev/celerix-build/pkg/client"
	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/spf13/cobra"
)

func newPingCmd(r *remote) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the daemon is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.client().Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PONG")
			return nil
		},
	}
}

func addPageFlags(cmd *cobra.Command, p *client.PageQuery) {
	cmd.Flags().IntVar(&p.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "page size (max 100)")
	cmd.Flags().StringVar(&p.Search, "search", "", "case-insensitive text search")
}

func newProjectsCmd(r *remote) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Inspect projects",
	}

	var status string
	var page client.PageQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := r.client().ListProjects(cmd.Context(), schema.ProjectStatus(status), page)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status")
	addPageFlags(list, &page)

	cmd.AddCommand(list)
	return cmd
}

func newMaterialsCmd(r *remote) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "materials",
		Short: "Inspect and approve materials",
	}

	var q client.MaterialQuery
	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List materials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Status = schema.MaterialStatus(status)
			res, err := r.client().ListMaterials(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	list.Flags().StringVar(&q.ProjectID, "project", "", "filter by project id")
	list.Flags().StringVar(&q.PhaseID, "phase", "", "filter by phase id")
	list.Flags().StringVar(&q.Category, "category", "", "filter by category")
	list.Flags().StringVar(&status, "status", "", "filter by status")
	addPageFlags(list, &q.PageQuery)

	var comment string
	approve := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a material pending approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := r.client().ApproveMaterial(cmd.Context(), args[0], comment)
			if err != nil {
				return err
			}
			return printJSON(cmd, m)
		},
	}
	approve.Flags().StringVar(&comment, "comment", "", "comment recorded in the approval chain")

	var reason string
	reject := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := r.client().RejectMaterial(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			return printJSON(cmd, m)
		},
	}
	reject.Flags().StringVar(&reason, "reason", "", "rejection reason")
	_ = reject.MarkFlagRequired("reason")

	cmd.AddCommand(list, approve, reject)
	return cmd
}

func newOrdersCmd(r *remote) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "po",
		Aliases: []string{"orders"},
		Short:   "Follow purchase orders",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "track <id>",
		Short: "Show where an order stands with its supplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := r.client().TrackPurchaseOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, t)
		},
	})
	return cmd
}

func newPortfolioCmd(r *remote) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show budget health across every project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := r.client().Portfolio(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}
}
