// cmd/tools/registry/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var registryPath string

var rootCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect and maintain the activity registry",
	Long:  "registry lists, validates and extends configs/activity-registry.json, the catalogue of job types the worker manager serves and the input schemas it enforces.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "path", "configs/activity-registry.json", "Path to registry file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
