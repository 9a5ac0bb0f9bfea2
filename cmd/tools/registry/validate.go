// cmd/tools/registry/validate.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grant-workers/pkg/registry"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check activity IDs, task types, timeouts and schemas",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return err
	}

	problems := reg.Validate()
	for _, p := range problems {
		fmt.Fprintln(cmd.ErrOrStderr(), "✗", p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s) in %s", len(problems), registryPath)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %d activities valid\n", len(reg.Activities))
	return nil
}
