package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"appointment-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func newRegistryCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and edit the activity registry",
	}
	cmd.PersistentFlags().StringVar(&path, "path", defaultRegistryPath, "registry file")

	cmd.AddCommand(
		newRegistryValidateCmd(&path),
		newRegistryAddCmd(&path),
		newRegistryUpdateCmd(&path),
	)
	return cmd
}

func newRegistryValidateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check ids, task types, error codes and input schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			problems := reg.Validate()
			for _, p := range problems {
				fmt.Fprintln(cmd.ErrOrStderr(), " -", p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("registry validation failed with %d problem(s)", len(problems))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed (%d activities).\n", len(reg.Activities))
			return nil
		},
	}
}

func newRegistryAddCmd(path *string) *cobra.Command {
	var a registry.Activity

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a planned activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.ID == "" || a.DisplayName == "" || a.TaskType == "" {
				return fmt.Errorf("id, display-name and task-type are required")
			}
			reg, err := registry.LoadRegistry(*path)
			if errors.Is(err, os.ErrNotExist) {
				reg = &registry.ActivityRegistry{Version: "1.0.0"}
			} else if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}

			a.ErrorCodes = []string{}
			a.Workflows = []string{}
			a.Tags = []string{}
			if err := reg.Add(a, time.Now()); err != nil {
				return err
			}
			if problems := reg.Validate(); len(problems) > 0 {
				return fmt.Errorf("activity rejected: %v", problems[0])
			}
			if err := reg.Save(*path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", a.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&a.ID, "id", "", "activity id (domain.subdomain.action)")
	f.StringVar(&a.DisplayName, "display-name", "", "display name")
	f.StringVar(&a.Description, "description", "", "description")
	f.StringVar(&a.Category, "category", "appointment", "category")
	f.StringVar(&a.TaskType, "task-type", "", "Zeebe job type")
	f.StringVar(&a.Version, "version", "1.0.0", "version")
	f.StringVar(&a.ImplementationStatus, "status", registry.StatusPlanned, "planned, in-progress, completed or verified")
	f.StringVar(&a.Timeout, "timeout", "30s", "job timeout")
	f.IntVar(&a.Retries, "retries", 3, "job retries")
	return cmd
}

func newRegistryUpdateCmd(path *string) *cobra.Command {
	var id, field, value string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Set one field of an activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" || field == "" || value == "" {
				return fmt.Errorf("id, field and value are required")
			}
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Update(id, field, value, time.Now()); err != nil {
				return err
			}
			if err := reg.Save(*path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&id, "id", "", "activity id")
	f.StringVar(&field, "field", "", "status, version, timeout, retries or description")
	f.StringVar(&value, "value", "", "new value")
	return cmd
}
