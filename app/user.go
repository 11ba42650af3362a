package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gocinema/gocinema/internal/auth"
	"github.com/gocinema/gocinema/internal/daemon"
	usersvc "github.com/gocinema/gocinema/internal/service/user"
)

func init() { //nolint: gochecknoinits
	userCreateCmd.Flags().StringVar(&newUser.Username, "username", "", "Username of the new account")
	userCreateCmd.Flags().StringVar(&newUser.Email, "email", "", "Email of the new account")
	userCreateCmd.Flags().StringVar(&newUser.Password, "password", "", "Password of the new account")
	userCreateCmd.Flags().BoolVar(&newUserAdmin, "admin", false, "Grant the admin role")

	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd, userGrantCmd, userRevokeCmd)
	rootCmd.AddCommand(userCmd)
}

var (
	newUser      usersvc.RegisterInput
	newUserAdmin bool

	userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	userCreateCmd = &cobra.Command{
		Use:     "create",
		Short:   "Create a local user account",
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(s *daemon.Services) error {
				u, err := s.Users.Register(cmd.Context(), newUser)
				if err != nil {
					return err //nolint:wrapcheck
				}

				if newUserAdmin {
					if u, err = s.Users.GrantRole(cmd.Context(), u.ID, auth.RoleAdmin); err != nil {
						return err //nolint:wrapcheck
					}
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, roles %v)\n", u.Username, u.ID, u.RoleNames())

				return err //nolint:wrapcheck
			})
		},
	}

	userGrantCmd = &cobra.Command{
		Use:     "grant <username> <role>",
		Short:   "Grant a role to a user",
		Args:    cobra.ExactArgs(2), //nolint:mnd
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return changeRole(cmd, args[0], args[1], true)
		},
	}

	userRevokeCmd = &cobra.Command{
		Use:     "revoke <username> <role>",
		Short:   "Revoke a role from a user",
		Args:    cobra.ExactArgs(2), //nolint:mnd
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return changeRole(cmd, args[0], args[1], false)
		},
	}
)

func changeRole(cmd *cobra.Command, username, role string, grant bool) error {
	return withServices(cmd, func(s *daemon.Services) error {
		u, err := s.Users.GetByUsername(cmd.Context(), username)
		if err != nil {
			return err //nolint:wrapcheck
		}

		change := s.Users.RevokeRole
		if grant {
			change = s.Users.GrantRole
		}

		if u, err = change(cmd.Context(), u.ID, role); err != nil {
			return err //nolint:wrapcheck
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "user %s has roles %v\n", u.Username, u.RoleNames())

		return err //nolint:wrapcheck
	})
}

// withServices runs fn with the services of the configured database.
func withServices(cmd *cobra.Command, fn func(s *daemon.Services) error) error {
	s, err := daemon.NewServices(cmd.Context(), &cfg)
	if err != nil {
		return err //nolint:wrapcheck
	}

	defer s.Close()

	return fn(s)
}
