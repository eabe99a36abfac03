package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"matching-workers/pkg/registry"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check required fields and compile every input schema",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate sample job variables against a task type's input schema",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a single field of an activity",
	Args:  cobra.NoArgs,
	RunE:  runUpdate,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered activities",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var (
	checkTaskType string
	checkInput    string

	updateID    string
	updateField string
	updateValue string
)

func init() {
	rootCmd.AddCommand(validateCmd, checkCmd, updateCmd, listCmd)

	checkCmd.Flags().StringVar(&checkTaskType, "task-type", "", "task type to validate against")
	checkCmd.Flags().StringVar(&checkInput, "input", "", "file holding the job variables as JSON (- for stdin)")
	_ = checkCmd.MarkFlagRequired("task-type")
	_ = checkCmd.MarkFlagRequired("input")

	updateCmd.Flags().StringVar(&updateID, "id", "", "activity id")
	updateCmd.Flags().StringVar(&updateField, "field", "", "field to update (version, displayName, description, category, timeout, retries)")
	updateCmd.Flags().StringVar(&updateValue, "value", "", "new value")
	_ = updateCmd.MarkFlagRequired("id")
	_ = updateCmd.MarkFlagRequired("field")
	_ = updateCmd.MarkFlagRequired("value")
}

func runValidate(cmd *cobra.Command, args []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := validateRegistry(reg); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var data []byte
	if checkInput == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(checkInput)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	if err := checkVariables(reg, checkTaskType, string(data)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Input is valid for %s.\n", checkTaskType)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := updateActivity(reg, updateID, updateField, updateValue); err != nil {
		return err
	}
	if err := saveRegistry(reg, registryPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", updateID, updateField, updateValue)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, a := range reg.Activities {
		fmt.Fprintf(out, "%-30s %-10s %-8s %s\n", a.TaskType, a.Version, a.Timeout, strings.Join(a.ErrorCodes, ","))
	}
	return nil
}
