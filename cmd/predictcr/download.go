package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
)

var artifactKinds = map[string]model.ArtifactKind{
	string(model.ArtifactInputH5):     model.ArtifactInputH5,
	string(model.ArtifactInputCSV):    model.ArtifactInputCSV,
	string(model.ArtifactResult):      model.ArtifactResult,
	string(model.ArtifactAdminResult): model.ArtifactAdminResult,
}

var downloadCmd = &cobra.Command{
	Use:   "download KIND SAMPLE_ID SAMPLE_NAME",
	Short: "Download an input file or result of a sample",
	Long: `Download an input file or result of a sample into the download
directory (PREDICTCR_DOWNLOAD_DIR, default ~/Downloads).

KIND is one of h5, csv, result or admin-result.

Example:
  predictcr download result 42 tumor7`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, ok := artifactKinds[strings.ToLower(args[0])]
		if !ok {
			return fmt.Errorf("unknown artifact kind %q (want h5, csv, result or admin-result)", args[0])
		}
		sampleID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sample id %q: %w", args[1], err)
		}

		if kind == model.ArtifactAdminResult {
			err = app.requireAdmin()
		} else {
			err = app.requireLogin()
		}
		if err != nil {
			return err
		}

		path, err := app.Client.Download(cmd.Context(), kind, sampleID, args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}
