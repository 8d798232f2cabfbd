package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/models"
	"fintrack/internal/services"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect accounts and grant roles",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every user with role and status",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			users, err := services.NewUserService(e.db.DB()).ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EMAIL\tNAME\tROLE\tACTIVE")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", u.Email, u.Name, u.Role, u.IsActive)
			}
			return w.Flush()
		}),
	})

	cmd.AddCommand(roleCmd("promote", "Grant the admin role", models.UserRoleAdmin))
	cmd.AddCommand(roleCmd("demote", "Revoke the admin role", models.UserRoleUser))

	return cmd
}

func roleCmd(use, short string, role models.UserRole) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			user, err := services.NewUserService(e.db.DB()).SetRole(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			e.userCache.Invalidate(cmd.Context(), user.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
			return nil
		}),
	}
}
