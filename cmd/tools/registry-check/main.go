// cmd/tools/registry-check/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"course-workers/internal/common/validation"
	"course-workers/pkg/registry"
)

func main() {
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listPath := listCmd.String("path", "", "Registry file (defaults to the built-in registry)")

	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validatePath := validateCmd.String("path", "", "Registry file (defaults to the built-in registry)")

	checkCmd := flag.NewFlagSet("check-input", flag.ExitOnError)
	checkTask := checkCmd.String("taskType", "", "Task type whose input schema to apply")
	checkFile := checkCmd.String("file", "", "JSON file with job variables")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "list":
		listCmd.Parse(os.Args[2:])
		err = list(*listPath)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		err = validateRegistry(*validatePath)

	case "check-input":
		checkCmd.Parse(os.Args[2:])
		if *checkTask == "" || *checkFile == "" {
			fmt.Println("Error: taskType and file are required for check-input.")
			checkCmd.Usage()
			os.Exit(1)
		}
		err = checkInput(*checkTask, *checkFile)

	case "help":
		help()

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		help()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func load(path string) (*registry.ActivityRegistry, error) {
	if path == "" {
		return registry.Default()
	}
	return registry.LoadRegistry(path)
}

func list(path string) error {
	reg, err := load(path)
	if err != nil {
		return err
	}
	fmt.Printf("Registry %s (%d activities)\n", reg.Version, len(reg.Activities))
	for _, a := range reg.Activities {
		fmt.Printf("  %-28s %-14s %-10s timeout=%s retries=%d\n", a.TaskType, a.Category, a.ImplementationStatus, a.Timeout, a.Retries)
	}
	return nil
}

func validateRegistry(path string) error {
	reg, err := load(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func checkInput(taskType, file string) error {
	reg, err := registry.Default()
	if err != nil {
		return err
	}
	activity, ok := reg.Find(taskType)
	if !ok {
		return fmt.Errorf("no activity for task type %q", taskType)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var vars map[string]interface{}
	if err := json.Unmarshal(data, &vars); err != nil {
		return fmt.Errorf("job variables must be a JSON object: %w", err)
	}

	result, err := validation.Check(activity.InputSchema, vars)
	if err != nil {
		return err
	}
	if !result.Valid() {
		for _, msg := range result.Messages() {
			fmt.Println("  " + msg)
		}
		return fmt.Errorf("%d violation(s) for %s", len(result.Errors), taskType)
	}
	fmt.Printf("Input is valid for %s.\n", taskType)
	return nil
}

func help() {
	fmt.Println(`
Usage: registry-check <command> [flags]

Commands:
  list         List the activities in the registry
  validate     Validate the registry and its schemas
  check-input  Validate job variables against an activity's input schema
  help         Show this help message

Examples:
  registry-check list
  registry-check validate -path pkg/registry/activities.json
  registry-check check-input -taskType get-course-page -file vars.json`)
}
