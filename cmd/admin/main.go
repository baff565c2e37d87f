package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stemcapstone/smartgoals/cmd/admin/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "admin",
		Short:         "Administration tools for the SMART goal service",
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.UserCmd())
	rootCmd.AddCommand(cmd.TokenCmd())
	rootCmd.AddCommand(cmd.BoardCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
