package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"backup-editor/internal/models"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	configName = ".backup-editor"
	envPrefix  = "BACKUP_EDITOR"
)

// Settings is the resolved configuration for one run.
type Settings struct {
	Locale          string
	LogLevel        string
	LogFormat       string
	BackupDir       string
	BackupCopies    string
	SaveMode        models.SaveMode
	MaxCopies       int
	MaxConcurrency  int
	ShutdownTimeout time.Duration

	// ConfigFile is the file that was read, empty when none was found.
	ConfigFile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("locale", "en")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("backup.dir", "")
	v.SetDefault("backup.copies", "")
	v.SetDefault("save.mode", string(models.SaveModeAwaited))
	v.SetDefault("save.max_copies", 100)
	v.SetDefault("save.max_concurrency", runtime.NumCPU()*4)
	v.SetDefault("save.shutdown_timeout", 15*time.Second)
}

// Load reads .env, then the config file, then BACKUP_EDITOR_* variables.
// When configFile is empty the working directory and the home directory are
// searched for .backup-editor.yaml; a missing file is not an error.
func Load(configFile string) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("log.level", envPrefix+"_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		return nil, err
	}

	if configFile != "" {
		path, err := homedir.Expand(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Settings, error) {
	mode, err := models.ParseSaveMode(v.GetString("save.mode"))
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Locale:          v.GetString("locale"),
		LogLevel:        v.GetString("log.level"),
		LogFormat:       v.GetString("log.format"),
		BackupDir:       v.GetString("backup.dir"),
		BackupCopies:    v.GetString("backup.copies"),
		SaveMode:        mode,
		MaxCopies:       v.GetInt("save.max_copies"),
		MaxConcurrency:  v.GetInt("save.max_concurrency"),
		ShutdownTimeout: v.GetDuration("save.shutdown_timeout"),
		ConfigFile:      v.ConfigFileUsed(),
	}

	if os.Getenv("DEBUG") == "1" && !logLevelExplicit(v) {
		s.LogLevel = "debug"
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func logLevelExplicit(v *viper.Viper) bool {
	if os.Getenv(envPrefix+"_LOG_LEVEL") != "" || os.Getenv("LOG_LEVEL") != "" {
		return true
	}
	return v.InConfig("log.level")
}

// Validate rejects values no component can run with.
func (s *Settings) Validate() error {
	if s.MaxCopies < 0 {
		return fmt.Errorf("save.max_copies must not be negative, got %d", s.MaxCopies)
	}
	if s.MaxConcurrency < 0 {
		return fmt.Errorf("save.max_concurrency must not be negative, got %d", s.MaxConcurrency)
	}
	if s.ShutdownTimeout < 0 {
		return fmt.Errorf("save.shutdown_timeout must not be negative, got %s", s.ShutdownTimeout)
	}
	switch s.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", s.LogFormat)
	}
	return nil
}
