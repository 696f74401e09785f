package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	var envFile string
	var debug bool

	cmd := &cobra.Command{
		Use:   "interview-coach",
		Short: "Voice-driven mock interview coach",
		Long: `interview-coach runs spoken mock interviews against an interview service.

It asks each question aloud, captures the spoken answer through a speech
engine, submits it, and archives the final feedback.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(envFile); err != nil {
			return err
		}
		if debug {
			return os.Setenv("LOG_LEVEL", "debug")
		}
		return nil
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newReportsCommand(afero.NewOsFs()))
	cmd.AddCommand(newEventsCommand())

	return cmd
}

// loadEnv loads path into the environment without overriding variables that
// are already set. A missing file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
