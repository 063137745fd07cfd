package main

import (
	"github.com/spf13/cobra"

	"github.com/bububa/careerchat/config"
	"github.com/bububa/careerchat/logging"
)

// offlineAnnotation marks commands which never call the llm, they run without an api key
const offlineAnnotation = "offline"

var (
	envFile  string
	logLevel string

	// loaded before each command
	cfg *config.Config
	log *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "careerchat",
		Short: "careerchat runs a team of LLM agents reviewing a CV",
		Long:  "careerchat starts a group chat in which agents read a CV, assess skill gaps and recommend courses until the request is resolved.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			load := config.Load
			if _, ok := cmd.Annotations[offlineAnnotation]; ok {
				load = config.Read
			}
			var err error
			if cfg, err = load(files...); err != nil {
				return err
			}
			level := cfg.LogLevel
			if logLevel != "" {
				level = logLevel
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default .env)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, silent)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newRolesCmd())
	return cmd
}
