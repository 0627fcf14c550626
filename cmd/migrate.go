package cmd

import (
	"errors"
	"fmt"

	"admin-rbac/database"
	"admin-rbac/schema"
	"admin-rbac/services"

	"github.com/spf13/cobra"
)

func newMigrateCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate {name}",
		Short: "Create or update the tables of an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(*cfgFile)
			if err != nil {
				return err
			}
			defer env.Close()

			app, err := env.registry.Get(services.NamespaceName(args[0]))
			if errors.Is(err, schema.ErrNamespaceNotConfigured) {
				return services.ErrConfigName
			}
			if err != nil {
				return err
			}
			db, err := env.conns.For(app)
			if err != nil {
				return err
			}
			if err := database.Migrate(db, app); err != nil {
				return err
			}
			env.logger.Sugar().Infow("Migrated namespace", "app", app.Name)
			fmt.Fprintln(cmd.OutOrStdout(), "Done.")
			return nil
		},
	}
}
