package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/Astemirdum/my-little-library/library/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:   "library",
	Short: "MyLittleLibrary catalog server and admin tools",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional, the environment may already be populated
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "load envs from .env: %v\n", err)
		}
	},
	SilenceUsage: true,
}

func loadConfig() *config.Config {
	return config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)
}
