package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellouser/internal/app"
	"github.com/dropDatabas3/hellouser/internal/services/users"
)

func newUsersCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Operaciones sobre usuarios directamente contra el store",
	}

	var name, email string
	create := &cobra.Command{
		Use:   "create",
		Short: "Registra un usuario",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, opts, func(ctx context.Context, svc users.Service) (*users.UserOutput, error) {
				return svc.Create(ctx, users.CreateInput{Name: name, Email: email})
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "nombre (2..50 caracteres)")
	create.Flags().StringVar(&email, "email", "", "email")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("email")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Busca un usuario por id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, opts, func(ctx context.Context, svc users.Service) (*users.UserOutput, error) {
				return svc.GetByID(ctx, args[0])
			})
		},
	}

	find := &cobra.Command{
		Use:   "find <email>",
		Short: "Busca un usuario por email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, opts, func(ctx context.Context, svc users.Service) (*users.UserOutput, error) {
				return svc.GetByEmail(ctx, args[0])
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Cambia el nombre de un usuario",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, opts, func(ctx context.Context, svc users.Service) (*users.UserOutput, error) {
				return svc.Rename(ctx, args[0], args[1])
			})
		},
	}

	changeEmail := &cobra.Command{
		Use:   "change-email <id> <email>",
		Short: "Cambia el email de un usuario",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, opts, func(ctx context.Context, svc users.Service) (*users.UserOutput, error) {
				return svc.ChangeEmail(ctx, args[0], args[1])
			})
		},
	}

	cmd.AddCommand(create, get, find, rename, changeEmail)
	return cmd
}

// withUsers abre el container, ejecuta fn e imprime el resultado.
func withUsers(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, svc users.Service) (*users.UserOutput, error)) error {
	ctx := cmd.Context()
	c, err := app.New(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	out, err := fn(ctx, c.Users)
	if err != nil {
		return err
	}
	return printUser(cmd.OutOrStdout(), opts.Format, out)
}
