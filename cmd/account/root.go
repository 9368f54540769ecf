package main

import (
	"github.com/spf13/cobra"
)

var logLevel string

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "account",
		Short:         "Shop account service",
		Long:          `Account service: registration, login sessions, password recovery and profile management.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides LOG_LEVEL")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
