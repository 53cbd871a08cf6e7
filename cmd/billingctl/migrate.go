package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/flota-crm-api/internal/bootstrap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down]",
	Short: "Aplica o revierte el esquema de PostgreSQL",
	Example: `  billingctl migrate up
  billingctl migrate down`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		switch args[0] {
		case "up":
			return bootstrap.Migrate(cfg, log, true)
		case "down":
			return bootstrap.Migrate(cfg, log, false)
		default:
			return fmt.Errorf("dirección %q desconocida: use up o down", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
