// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var registryPath string

var rootCmd = &cobra.Command{
	Use:   "registry-updater",
	Short: "Maintain the matching worker activity registry",
	Long: `registry-updater inspects and edits configs/activity-registry.json,
the file the worker manager loads to validate job variables.

Examples:
  registry-updater validate
  registry-updater check --task-type generate-recommendations --input vars.json
  registry-updater update --id explain-recommendation --field timeout --value 15s`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&registryPath, "path", "p", "configs/activity-registry.json",
		"path to the activity registry file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
