package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/articles/cmd/articlesapi/cmd/users"
	"github.com/terraconstructs/articles/internal/config"
	"github.com/terraconstructs/articles/internal/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "articlesapi",
	Short: "Articles API server",
	Long: `Articles API serves users, articles and reviews over HTTP.
Requests are authenticated with HS256 bearer tokens and authorized by role and ownership.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		applyFlagOverrides(cmd, cfg)

		logging.Init(logging.Config{
			Level:     cfg.LogLevel(),
			Format:    cfg.Log.Format,
			Timestamp: true,
			Output:    os.Stderr,
		})
		return nil
	},
}

// applyFlagOverrides lets explicit flags win over file and environment values.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("db-url") {
		c.DatabaseURL, _ = flags.GetString("db-url")
	}
	if flags.Changed("server-addr") {
		c.ServerAddr, _ = flags.GetString("server-addr")
	}
	if flags.Changed("debug") {
		c.Debug, _ = flags.GetBool("debug")
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")

	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
