// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/latex-ocr/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or empty the recognition cache",
	Long: `The recognition cache stores one LaTeX result per image content, backend
and preprocessing setting. It is enabled on run with --cache.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number of cached recognitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		st, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}
		fmt.Fprintf(out, "Location: %s\n", st.Location)
		fmt.Fprintf(out, "Entries:  %d\n", st.Entries)
		fmt.Fprintf(out, "Hits:     %d\n", st.Hits)
		if st.Entries > 0 {
			fmt.Fprintf(out, "Oldest:   %s\n", st.Oldest.Local().Format(time.DateTime))
			fmt.Fprintf(out, "Newest:   %s\n", st.Newest.Local().Format(time.DateTime))
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached recognition",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached recognitions\n", n)
		return nil
	},
}

func openCache(cmd *cobra.Command) (*cache.Store, error) {
	path, _ := cmd.Flags().GetString("path")
	if !cmd.Flags().Changed("path") {
		if p := viper.GetString("cache.path"); p != "" {
			path = p
		}
	}
	return cache.Open(path)
}

func init() {
	cacheCmd.PersistentFlags().String("path", defaultCachePath(), "recognition cache database")
	cacheStatsCmd.Flags().Bool("json", false, "output stats as JSON")

	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
