// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/latex-ocr/internal/pipeline"
	"github.com/pdiddy/latex-ocr/internal/recognize"
	"github.com/pdiddy/latex-ocr/internal/secrets"
	"github.com/pdiddy/latex-ocr/internal/typeset"
	"github.com/pdiddy/latex-ocr/pkg/types"
)

func setDefaults() {
	viper.SetDefault("input_dir", pipeline.DefaultInputDir)
	viper.SetDefault("output_dir", pipeline.DefaultOutputDir)
	viper.SetDefault("output_name", pipeline.DefaultOutputName)

	viper.SetDefault("recognizer.backend", string(types.BackendContainer))
	viper.SetDefault("recognizer.image", recognize.DefaultImage)
	viper.SetDefault("recognizer.url", recognize.DefaultURL)
	viper.SetDefault("recognizer.timeout", 2*time.Minute)
	viper.SetDefault("recognizer.max_retries", 3)
	viper.SetDefault("recognizer.languages", []string{"eng"})

	viper.SetDefault("document.template", string(types.TemplateFull))

	viper.SetDefault("typeset.enabled", true)
	viper.SetDefault("typeset.engine", typeset.DefaultEngine)
	viper.SetDefault("typeset.passes", typeset.DefaultPasses)
}

// bindFlags binds the flags of cmd to viper keys. Binding happens when the
// command runs so that commands sharing a key do not override each other.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// runConfig assembles the pipeline configuration from flags, environment,
// config file and secrets.
func runConfig() types.RunConfig {
	return types.RunConfig{
		InputDir:   viper.GetString("input_dir"),
		OutputDir:  viper.GetString("output_dir"),
		OutputName: viper.GetString("output_name"),
		Recognizer: types.RecognizerConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:    viper.GetDuration("recognizer.timeout"),
				UserAgent:  "latex-ocr/" + version,
				MaxRetries: viper.GetInt("recognizer.max_retries"),
			},
			Backend:   types.RecognizerBackend(viper.GetString("recognizer.backend")),
			Image:     viper.GetString("recognizer.image"),
			URL:       viper.GetString("recognizer.url"),
			APIToken:  loadedSecrets.Resolve(secrets.RecognizerAPIToken, viper.GetString("recognizer.api_token")),
			Languages: viper.GetStringSlice("recognizer.languages"),
			Preprocess: types.PreprocessConfig{
				Grayscale: viper.GetBool("recognizer.preprocess.grayscale"),
				MaxWidth:  viper.GetInt("recognizer.preprocess.max_width"),
				MaxHeight: viper.GetInt("recognizer.preprocess.max_height"),
			},
		},
		Document: types.DocumentConfig{
			Template: types.TemplateName(viper.GetString("document.template")),
			Title:    viper.GetString("document.title"),
			Author:   viper.GetString("document.author"),
			Language: viper.GetString("document.language"),
			Records:  viper.GetBool("document.records"),
		},
		Typeset: typesetConfig(),
		Cache:   types.CacheConfig{Path: viper.GetString("cache.path")},
	}
}

func typesetConfig() types.TypesetConfig {
	return types.TypesetConfig{
		Enabled:   viper.GetBool("typeset.enabled"),
		Engine:    viper.GetString("typeset.engine"),
		Passes:    viper.GetInt("typeset.passes"),
		VerifyPDF: viper.GetBool("typeset.verify_pdf"),
	}
}

// defaultCachePath is the cache location used when --cache is given without
// a value.
func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = ".cache"
	}
	return filepath.Join(dir, "latex-ocr", "recognitions.db")
}
