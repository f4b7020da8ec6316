package main

import (
	"github.com/Astemirdum/my-little-library/library/app"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the library HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		app.Run(loadConfig())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
