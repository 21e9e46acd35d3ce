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
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/codetran/internal/gateway"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the Ollama server",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("ollama-url")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		ollama := gateway.NewOllama(url, timeout)
		models, err := ollama.ListModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("list models: %w", err)
		}
		if len(models) == 0 {
			fmt.Println("No models installed. Pull one with: ollama pull qwen2.5:1.5b")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSIZE")
		for _, m := range models {
			fmt.Fprintf(w, "%s\t%.1f GB\n", m.Name, float64(m.Size)/(1<<30))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().String("ollama-url", gateway.DefaultOllamaURL, "Ollama base URL")
	modelsCmd.Flags().Duration("timeout", 30*time.Second, "Request timeout")
}
