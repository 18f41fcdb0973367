// Command branch serves the demo application and inspects its routes.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/km-arc/branch/framework/app"
	"github.com/km-arc/branch/framework/resolver"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "branch",
		Short: "Autowiring container and group-scoped router",
		Long: `branch runs an HTTP application whose controllers are built by an
autowiring container and dispatched by a group-scoped router.

Examples:
  branch serve --port 9000
  branch routes
  branch route:url api.users.show id=42 tab=settings`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to the .env file")

	boot := func() (*app.Application, error) {
		return bootstrap(envFile)
	}

	rootCmd.AddCommand(
		serveCmd(boot),
		routesCmd(boot),
		routeURLCmd(boot),
		versionCmd(),
	)
	return rootCmd
}

// bootstrap builds the demo application and registers its routes.
func bootstrap(envFile string) (*app.Application, error) {
	a := app.New(classes(), envFile)
	a.Singleton(resolver.Key[*UserRepository](), "UserRepository")
	a.Instance("auth", requireToken)
	a.Routes(registerRoutes)

	if err := a.Boot(); err != nil {
		return nil, err
	}
	return a, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "branch %s\n", app.Version)
		},
	}
}
