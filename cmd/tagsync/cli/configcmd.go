package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mwantia/tagsync/internal/config"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management utilities",
		Long: `Manage TagSync configuration files.

This command provides utilities for generating and managing
configuration files for different environments.`,
	}

	cmd.AddCommand(newConfigGenerateCommand())

	return cmd
}

func newConfigGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an example configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputDir, _ := cmd.Flags().GetString("output")
			overwrite, _ := cmd.Flags().GetBool("overwrite")

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			target := filepath.Join(outputDir, "config.yaml")
			if _, err := os.Stat(target); err == nil && !overwrite {
				return fmt.Errorf("%s already exists (use --overwrite to replace it)", target)
			}

			data, err := yaml.Marshal(config.GetDefault())
			if err != nil {
				return fmt.Errorf("failed to marshal default configuration: %w", err)
			}

			if err := os.WriteFile(target, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}

			fmt.Printf("Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().String("output", ".", "output directory for generated files")
	cmd.Flags().Bool("overwrite", false, "overwrite existing files")
	return cmd
}
