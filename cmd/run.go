/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/codetran/internal/config"
	"github.com/valpere/codetran/internal/detector"
	"github.com/valpere/codetran/internal/gateway"
	"github.com/valpere/codetran/internal/pool"
	"github.com/valpere/codetran/internal/store"
)

var configFile string

var runCmd = &cobra.Command{
	Use:   "run [path]",
	Short: "Translate comments and docstrings under a path",
	Long: `Walk a directory tree (or a single file), extract comments and
docstrings in the configured source language, translate them and rewrite
each file in place. Files are replaced atomically; a failed file is left
untouched and does not stop the run.

Settings merge from defaults, the nearest ` + config.ConfigName + ` above the
path, and command-line flags, in that order.

Examples:

  # Preview without modifying anything
  codetran run --dry-run ./src

  # Translate with a specific Ollama model
  codetran run --model aya:8b ./src

  # Include string literals (may break code, review the diff first)
  codetran run --translate-all --dry-run ./src`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("path %s: %w", path, err)
		}

		cfg, err := config.Load(path, configFile, cmd.Flags())
		if err != nil {
			return err
		}

		gw, err := buildGateway(cfg)
		if err != nil {
			return err
		}

		var cache *store.Store
		if !cfg.NoCache && cfg.CacheDB != "" {
			if err := os.MkdirAll(filepath.Dir(cfg.CacheDB), 0o755); err == nil {
				if cache, err = store.New(cfg.CacheDB); err != nil {
					fmt.Fprintf(os.Stderr, "Translation memory unavailable: %v\n", err)
					cache = nil
				}
			}
		}
		if cache != nil {
			defer cache.Close()
		}

		var det *detector.Detector
		if cfg.SourceLang == "auto" {
			det = detector.New()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "Translating %s -> %s via %s (%d workers)\n",
			cfg.SourceLang, cfg.TargetLang, gw.Name(), cfg.Workers)
		if cfg.DryRun {
			fmt.Fprintln(os.Stderr, "Dry run: no files will be modified")
		}

		stats, err := pool.New(cfg, gw, cache, det, os.Stdout).Run(ctx, path)
		if err != nil {
			return err
		}

		printStats(stats)

		if stats.Scanned == 0 {
			return fmt.Errorf("no supported files found under %s", path)
		}
		if stats.Failed > 0 {
			return fmt.Errorf("%d file(s) failed", stats.Failed)
		}
		return nil
	},
}

func buildGateway(cfg *config.Config) (gateway.Gateway, error) {
	switch cfg.Backend {
	case "ollama":
		return gateway.WithRetry(gateway.NewOllama(cfg.OllamaURL, cfg.Timeout), cfg.MaxRetries), nil
	case "google":
		return gateway.WithRetry(gateway.NewGoogle(cfg.Credentials), cfg.MaxRetries), nil
	case "echo":
		return gateway.Echo{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func printStats(stats *pool.Stats) {
	w := tabwriter.NewWriter(os.Stderr, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nMETRIC\tVALUE")
	fmt.Fprintf(w, "Files scanned\t%d\n", stats.Scanned)
	fmt.Fprintf(w, "Files translated\t%d\n", stats.Translated)
	fmt.Fprintf(w, "Files skipped\t%d\n", stats.Skipped)
	fmt.Fprintf(w, "Files failed\t%d\n", stats.Failed)
	fmt.Fprintf(w, "Spans translated\t%d\n", stats.SpansTranslated)
	fmt.Fprintf(w, "Chunks failed\t%d\n", stats.ChunksFailed)
	w.Flush()

	if len(stats.Errors) > 0 {
		fmt.Fprintln(os.Stderr, "\nErrors:")
		for i, e := range stats.Errors {
			if i == 10 {
				fmt.Fprintf(os.Stderr, "  ... and %d more\n", len(stats.Errors)-10)
				break
			}
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: nearest "+config.ConfigName+")")
	runCmd.Flags().String("backend", "ollama", "Translation backend: ollama, google or echo")
	runCmd.Flags().StringP("model", "m", "qwen2.5:1.5b", "Model to use (ollama backend)")
	runCmd.Flags().StringP("source-lang", "s", "zh", "Source language code, or auto")
	runCmd.Flags().StringP("target-lang", "t", "en", "Target language code")
	runCmd.Flags().Bool("translate-all", false, "Also translate string literals (risky)")
	runCmd.Flags().Bool("all-text", false, "Translate every span, not only those containing CJK text")
	runCmd.Flags().BoolP("dry-run", "n", false, "Report the would-be changes without writing")
	runCmd.Flags().Bool("recursive", true, "Recurse into subdirectories")
	runCmd.Flags().IntP("workers", "w", 4, "Number of parallel workers")
	runCmd.Flags().Int("max-chunk-size", 5000, "Per-request character budget")
	runCmd.Flags().String("ollama-url", gateway.DefaultOllamaURL, "Ollama base URL")
	runCmd.Flags().String("credentials", "", "Google Cloud credentials file (google backend)")
	runCmd.Flags().Duration("timeout", 0, "Per-request timeout (0 = backend default)")
	runCmd.Flags().Int("max-retries", gateway.DefaultMaxAttempts, "Retry attempts for transient backend failures")
	runCmd.Flags().String("cache-db", "", "Translation memory database path")
	runCmd.Flags().Bool("no-cache", false, "Disable the translation memory")
}
