package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/services"
)

func newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "audit <transaction|settings> <id>",
		Short:     "Show the audit trail of one resource",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{services.AuditResourceTransaction, services.AuditResourceSettings},
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			resourceType, resourceID := args[0], args[1]
			if resourceType != services.AuditResourceTransaction && resourceType != services.AuditResourceSettings {
				return fmt.Errorf("unknown resource type %q", resourceType)
			}

			rows, err := services.NewAuditService(e.db.DB()).History(cmd.Context(), resourceType, resourceID)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No audit entries")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tACTION\tUSER\tIP\tCHANGES")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					r.CreatedAt.UTC().Format(time.RFC3339), r.Action, r.UserID, r.IPAddress, r.Changes)
			}
			return w.Flush()
		}),
	}
}
