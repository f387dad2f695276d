package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/lorcheck/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/lorcheck.yaml
var configTemplate []byte

// stdoutPath makes init print the template instead of writing a file.
const stdoutPath = "-"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a lorcheck configuration file",
		Long: `Init writes a commented .lorcheck configuration file.

Every key is commented out, so the built-in expectations for
www.linux.org.ru stay in effect until you uncomment and edit them.

Examples:
  # Create .lorcheck in the current directory
  lorcheck init

  # Create a config for a mirror, used with "lorcheck run -c"
  lorcheck init -o ci/mirror.yaml

  # Print the template
  lorcheck init -o -`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		`Where to write the configuration ("-" prints it)`)
	cmd.Flags().BoolP("force", "f", false,
		"Replace an existing file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if path == stdoutPath {
		_, err := out.Write(configTemplate)
		return err
	}

	if err := writeConfigTemplate(path, force); err != nil {
		return err
	}

	fmt.Fprintf(out, "Created configuration file: %s\n", path)
	fmt.Fprintf(out, "Check it with: lorcheck run -c %s\n", path)
	return nil
}

// writeConfigTemplate writes the template to path, creating parent
// directories. An existing file is kept unless force is set.
func writeConfigTemplate(path string, force bool) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		if !force {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", path)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, configTemplate, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
