package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"matching-workers/internal/common/validation"
	explainrecommendation "matching-workers/internal/workers/matching/explain-recommendation"
	generaterecommendations "matching-workers/internal/workers/matching/generate-recommendations"
	sendrecommendationdigest "matching-workers/internal/workers/matching/send-recommendation-digest"
	"matching-workers/pkg/registry"
)

// workerTaskTypes are the task types the worker manager subscribes to.
var workerTaskTypes = []string{
	generaterecommendations.TaskType,
	explainrecommendation.TaskType,
	sendrecommendationdigest.TaskType,
}

func validateRegistry(reg *registry.ActivityRegistry) error {
	if len(reg.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	for _, activity := range reg.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if activity.Timeout != "" {
			if _, err := time.ParseDuration(activity.Timeout); err != nil {
				return fmt.Errorf("activity %s has invalid timeout %q", activity.ID, activity.Timeout)
			}
		}
	}

	v, err := validation.NewValidator(reg)
	if err != nil {
		return err
	}
	for _, taskType := range workerTaskTypes {
		if _, ok := reg.FindByTaskType(taskType); !ok {
			return fmt.Errorf("worker task type %s is not registered", taskType)
		}
		if !v.HasSchema(taskType) {
			return fmt.Errorf("worker task type %s has no input schema", taskType)
		}
	}
	return nil
}

func checkVariables(reg *registry.ActivityRegistry, taskType, variables string) error {
	if _, ok := reg.FindByTaskType(taskType); !ok {
		return fmt.Errorf("task type %s is not registered", taskType)
	}
	v, err := validation.NewValidator(reg)
	if err != nil {
		return err
	}
	return v.ValidateInput(taskType, variables)
}

func updateActivity(reg *registry.ActivityRegistry, id, field, value string) error {
	var activity *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			activity = &reg.Activities[i]
			break
		}
	}
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "category":
		activity.Category = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		if retries < 0 {
			return fmt.Errorf("retries must not be negative")
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return nil
}

func saveRegistry(reg *registry.ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
