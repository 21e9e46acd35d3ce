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
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/codetran/internal/config"
	"github.com/valpere/codetran/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the translation memory",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached translations",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		entries, err := s.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list cache: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("Translation memory is empty")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tTRANSLATED\tLANGS\tBACKEND\tUSED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s->%s\t%s\t%d\n",
				truncate(e.SourceText, 40), truncate(e.Translated, 40),
				e.SourceLang, e.TargetLang, e.Backend, e.UsageCount)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%d entries\n", len(entries))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached translations",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.Clear(cmd.Context())
		if err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Printf("Deleted %d entries\n", n)
		return nil
	},
}

func openCache(cmd *cobra.Command) (*store.Store, error) {
	path, _ := cmd.Flags().GetString("cache-db")
	if path == "" {
		path = config.DefaultCacheDB()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("translation memory %s: %w", path, err)
	}
	return store.New(path)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheCmd.PersistentFlags().String("cache-db", "", "Translation memory database path")
}
