package commands

import (
	"fmt"

	"backup-editor/internal/app"
	"backup-editor/internal/config"
	"backup-editor/internal/logger"

	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	ConfigFile string
	Locale     string
	LogLevel   string
	LogFormat  string
}

func New() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "backup-editor",
		Short: "A text editor that writes backup copies of every save.",
		Example: `
backup-editor
backup-editor --locale uk
backup-editor save --output notes.txt --backup-dir backups --copies 3 < notes.txt
`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, log, err := o.load(cmd)
			if err != nil {
				return err
			}
			application, err := app.New(app.Options{Settings: settings, Logger: log})
			if err != nil {
				return err
			}
			return application.Run()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.ConfigFile, "config", "", "Config file (default is ./.backup-editor.yaml or $HOME/.backup-editor.yaml).")
	flags.StringVar(&o.Locale, "locale", "", "UI language. One of 'en' or 'uk'.")
	flags.StringVar(&o.LogLevel, "log-level", "", "Log level. One of 'debug', 'info', 'warn' or 'error'.")
	flags.StringVar(&o.LogFormat, "log-format", "", "Log format. One of 'console' or 'json'.")

	AddCommands(cmd, o)
	return cmd
}

func AddCommands(topLevel *cobra.Command, o *rootOptions) {
	addSave(topLevel, o)
	addVersion(topLevel)
}

// load resolves settings from config, env and flags, then builds the logger.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Settings, logger.Logger, error) {
	settings, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("locale") {
		settings.Locale = o.Locale
	}
	if flags.Changed("log-level") {
		settings.LogLevel = o.LogLevel
	}
	if flags.Changed("log-format") {
		settings.LogFormat = o.LogFormat
	}
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}

	level, err := logger.ParseLevel(settings.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}
	return settings, logger.New(cmd.ErrOrStderr(), settings.LogFormat, level), nil
}
