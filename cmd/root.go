package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cppla/blog/config"
)

var configPath string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "blog",
	Short: "A small multi-user blog",
	Long: `blog serves a server-rendered blog where registered users write posts,
comment on them and rate them from 1 to 5.

Without a subcommand it starts the web server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the JSON config file")
}
