package cmd

import (
	"fmt"

	"admin-rbac/services"

	"github.com/spf13/cobra"
)

func newSeedAppCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "admin:seed-app {name}",
		Short: "Seed the default administrator, role, permissions and menus of an application",
		Long: `Seed the namespace derived from name (MyApp becomes my-app). Nothing is written when the
namespace already has administrators.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(*cfgFile)
			if err != nil {
				return err
			}
			defer env.Close()

			seeder := services.NewSeedService(env.registry, env.conns, env.stores, env.logger.Sugar())
			if _, err := seeder.SeedApp(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Done.")
			return nil
		},
	}
}
