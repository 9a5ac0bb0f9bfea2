// cmd/tools/registry/add.go
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"grant-workers/pkg/registry"
)

var (
	addID          string
	addDisplayName string
	addDescription string
	addCategory    string
	addTaskType    string
	addVersion     string
	addStatus      string
	addTimeout     string
	addRetries     int
	addSchemaFile  string
	addErrorCodes  []string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new activity",
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addID, "id", "", "Activity ID, domain.subdomain.action (required)")
	addCmd.Flags().StringVar(&addDisplayName, "display-name", "", "Display name")
	addCmd.Flags().StringVar(&addDescription, "description", "", "Description")
	addCmd.Flags().StringVar(&addCategory, "category", "recommendation", "Category")
	addCmd.Flags().StringVar(&addTaskType, "task-type", "", "Zeebe job type (required)")
	addCmd.Flags().StringVar(&addVersion, "version", "1.0.0", "Version")
	addCmd.Flags().StringVar(&addStatus, "status", registry.StatusPlanned, "Implementation status")
	addCmd.Flags().StringVar(&addTimeout, "timeout", "30s", "Job timeout")
	addCmd.Flags().IntVar(&addRetries, "retries", 3, "Job retries")
	addCmd.Flags().StringVar(&addSchemaFile, "input-schema", "", "Path to a JSON Schema file for the job variables")
	addCmd.Flags().StringSliceVar(&addErrorCodes, "error-codes", nil, "BPMN error codes the activity may throw")
	_ = addCmd.MarkFlagRequired("id")
	_ = addCmd.MarkFlagRequired("task-type")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return err
	}

	schema := map[string]interface{}{"type": "object"}
	if addSchemaFile != "" {
		data, err := os.ReadFile(addSchemaFile)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &schema); err != nil {
			return fmt.Errorf("parse %s: %w", addSchemaFile, err)
		}
	}

	activity := registry.Activity{
		ID:                   addID,
		DisplayName:          addDisplayName,
		Description:          addDescription,
		Category:             addCategory,
		Version:              addVersion,
		TaskType:             addTaskType,
		ImplementationStatus: addStatus,
		InputSchema:          schema,
		ErrorCodes:           addErrorCodes,
		Timeout:              addTimeout,
		Retries:              addRetries,
	}
	if err := reg.Add(activity); err != nil {
		return err
	}
	if err := reg.Save(registryPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ added %s (%s)\n", addID, addTaskType)
	return nil
}
