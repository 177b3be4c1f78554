package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the server settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the server settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		output, _ := cmd.Flags().GetString("output")

		settings, err := app.Settings.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		return writeSettings(cmd.OutOrStdout(), settings, output)
	},
}

var settingsSaveCmd = &cobra.Command{
	Use:   "save FILE",
	Short: "Replace the server settings with the contents of FILE (admin)",
	Long: `Replace the server settings with the contents of a YAML or JSON file.

The file holds the full record, as printed by "settings show".

Example:
  predictcr settings show > settings.yaml
  predictcr settings save settings.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.requireAdmin(); err != nil {
			return err
		}

		settings, err := readSettingsFile(args[0])
		if err != nil {
			return err
		}
		if err := app.Settings.Save(cmd.Context(), settings); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Settings saved")
		return nil
	},
}

// writeSettings prints settings as YAML (the default) or JSON.
func writeSettings(w io.Writer, settings model.Settings, output string) error {
	switch strings.ToLower(output) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(settings)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(settings); err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", output)
	}
}

// readSettingsFile decodes a settings record from a .json file or, for any
// other extension, YAML. Unknown fields are rejected.
func readSettingsFile(path string) (model.Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Settings{}, fmt.Errorf("read settings file: %w", err)
	}

	var settings model.Settings
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&settings); err != nil {
			return model.Settings{}, fmt.Errorf("decode %s: %w", path, err)
		}
		return settings, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&settings); err != nil {
		return model.Settings{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return settings, nil
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSaveCmd)
	settingsShowCmd.Flags().StringP("output", "o", "yaml", "output format (yaml or json)")
}
