/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/servana/eventrelay/internal/bootstrap"
	"github.com/servana/eventrelay/internal/config"
	"github.com/spf13/cobra"
)

var processorCmd = &cobra.Command{
	Use:   "processor",
	Short: "Run the outbox processor and operator API",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config error:", err)
			os.Exit(1)
		}
		if err := bootstrap.RunProcessor(cmd.Context(), cfg); err != nil {
			fmt.Fprintln(os.Stderr, "processor error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(processorCmd)
}
