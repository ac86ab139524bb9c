// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the latex-ocr CLI.
package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/latex-ocr/internal/logger"
	"github.com/pdiddy/latex-ocr/internal/secrets"
	"github.com/pdiddy/latex-ocr/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// log is the process logger, configured in PersistentPreRunE.
	log = zerolog.Nop()

	logCloser io.Closer

	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets = secrets.Secrets{}
)

// rootCmd is the base command for the latex-ocr CLI.
var rootCmd = &cobra.Command{
	Use:   "latex-ocr",
	Short: "Recognize formula images into a LaTeX document",
	Long: `latex-ocr scans a folder for PNG images of mathematical formulas, runs each
through an image-to-LaTeX recognition model, collects the results into a
single LaTeX document and compiles it to PDF with pdflatex.

The run command executes the whole pipeline. render and compile repeat the
last two stages on saved records or an existing document.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, closer, err := logger.New(logConfig(), os.Stderr)
		if err != nil {
			return err
		}
		log, logCloser = l, closer
		if used := viper.ConfigFileUsed(); used != "" {
			log.Debug().Str("file", used).Msg("using config file")
		}

		s, err := secrets.Load(secrets.DefaultDir, log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			log.Debug().Strs("keys", s.Keys()).Msg("loaded secrets")
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./latex-ocr.yaml or ~/.config/latex-ocr/config.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-file", "", "also write JSON logs to this rotating file")
	pf.Bool("log-json", false, "write console logs as JSON")

	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.file", pf.Lookup("log-file"))
	viper.BindPFlag("log.json", pf.Lookup("log-json"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		os.Stderr.WriteString("warning: reading .env: " + err.Error() + "\n")
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("latex-ocr")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "latex-ocr"))
		}
	}

	viper.SetEnvPrefix("LATEX_OCR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			os.Stderr.WriteString("warning: reading config: " + err.Error() + "\n")
		}
	}
}

func logConfig() types.LogConfig {
	return types.LogConfig{
		Level:      viper.GetString("log.level"),
		JSON:       viper.GetBool("log.json"),
		File:       viper.GetString("log.file"),
		MaxSizeMB:  viper.GetInt("log.max_size_mb"),
		MaxBackups: viper.GetInt("log.max_backups"),
		MaxAgeDays: viper.GetInt("log.max_age_days"),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
