package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gocinema/gocinema/internal/daemon"
)

func init() { //nolint: gochecknoinits
	roleCmd.AddCommand(roleSeedCmd)
	rootCmd.AddCommand(roleCmd)
}

var (
	roleCmd = &cobra.Command{
		Use:   "role",
		Short: "Manage roles",
	}

	roleSeedCmd = &cobra.Command{
		Use:     "seed [name...]",
		Short:   "Create the default roles and any additional named roles",
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(s *daemon.Services) error {
				if err := daemon.SeedRoles(cmd.Context(), s.Roles, args...); err != nil {
					return err //nolint:wrapcheck
				}

				roles, err := s.Auth.Roles().List(cmd.Context())
				if err != nil {
					return err //nolint:wrapcheck
				}

				for _, r := range roles {
					if _, err = fmt.Fprintln(cmd.OutOrStdout(), r.Name); err != nil {
						return err //nolint:wrapcheck
					}
				}

				return nil
			})
		},
	}
)
