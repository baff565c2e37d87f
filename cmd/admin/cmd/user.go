package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/service"
)

func UserCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var email, name, role string
	add := &cobra.Command{
		Use:     "add",
		Short:   "Create a student, teacher or admin account",
		Example: "admin user add --email ada@example.com --name Ada --role teacher",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			users := service.NewUserService(repository.NewUserRepository(database))
			u, err := users.Create(cmd.Context(), email, name, model.Role(role))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Email, u.ID)
			return nil
		},
	}
	add.Flags().StringVar(&email, "email", "", "email address")
	add.Flags().StringVar(&name, "name", "", "display name")
	add.Flags().StringVar(&role, "role", string(model.RoleStudent), "student, teacher or admin")
	_ = add.MarkFlagRequired("email")
	_ = add.MarkFlagRequired("name")

	user.AddCommand(add)
	return user
}
