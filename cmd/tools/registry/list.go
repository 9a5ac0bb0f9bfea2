// cmd/tools/registry/list.go
package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"grant-workers/pkg/registry"
)

var listCategory string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered activities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return err
		}
		return printActivities(cmd.OutOrStdout(), reg, listCategory)
	},
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only show activities in this category")
	rootCmd.AddCommand(listCmd)
}

func printActivities(out io.Writer, reg *registry.ActivityRegistry, category string) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTASK TYPE\tSTATUS\tTIMEOUT\tRETRIES")
	for _, a := range reg.Activities {
		if category != "" && a.Category != category {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.ID, a.TaskType, a.ImplementationStatus, a.Timeout, a.Retries)
	}
	return w.Flush()
}
