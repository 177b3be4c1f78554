package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List submitted samples",
	RunE: func(cmd *cobra.Command, _ []string) error {
		all, _ := cmd.Flags().GetBool("all")

		var (
			samples []model.Sample
			err     error
		)
		if all {
			if err := app.requireAdmin(); err != nil {
				return err
			}
			samples, err = app.Client.AdminSamples(cmd.Context())
		} else {
			if err := app.requireLogin(); err != nil {
				return err
			}
			samples, err = app.Client.Samples(cmd.Context())
		}
		if err != nil {
			return err
		}

		return printSamples(cmd.OutOrStdout(), samples, all)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit NAME",
	Short: "Submit a new sample",
	Long: `Submit a new sample from an h5 and a csv file.

Tumor type, source, file sizes and CSV columns are checked against the
server settings before anything is uploaded.

Example:
  predictcr submit sample-1 --tumor-type Lung --source TCGA --h5 s.h5 --csv s.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sub := model.SampleSubmission{Name: args[0]}
		sub.TumorType, _ = cmd.Flags().GetString("tumor-type")
		sub.Source, _ = cmd.Flags().GetString("source")
		sub.H5Path, _ = cmd.Flags().GetString("h5")
		sub.CSVPath, _ = cmd.Flags().GetString("csv")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if dryRun {
			if err := app.Submissions.Check(cmd.Context(), sub); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sample is valid")
			return nil
		}

		sample, err := app.Submissions.Submit(cmd.Context(), sub)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Submitted sample %d (%s), status %s\n", sample.ID, sample.Name, sample.Status)
		return nil
	},
}

func printSamples(w io.Writer, samples []model.Sample, withEmail bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if withEmail {
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tTUMOR TYPE\tSOURCE\tSUBMITTED\tSTATUS\tRESULT")
	} else {
		fmt.Fprintln(tw, "ID\tNAME\tTUMOR TYPE\tSOURCE\tSUBMITTED\tSTATUS\tRESULT")
	}

	for _, s := range samples {
		submitted := s.SubmittedAt().Local().Format(time.DateTime)
		result := "-"
		if s.HasResultsZip {
			result = "yes"
		}
		if withEmail {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Email, s.TumorType, s.Source, submitted, s.Status, result)
		} else {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.TumorType, s.Source, submitted, s.Status, result)
		}
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(samplesCmd, submitCmd)

	samplesCmd.Flags().Bool("all", false, "list samples of all users (admin)")

	submitCmd.Flags().String("tumor-type", "", "tumor type")
	submitCmd.Flags().String("source", "", "sample source")
	submitCmd.Flags().String("h5", "", "path of the h5 input file")
	submitCmd.Flags().String("csv", "", "path of the csv input file")
	submitCmd.Flags().Bool("dry-run", false, "only check the sample, do not upload")
	for _, name := range []string{"tumor-type", "source", "h5", "csv"} {
		_ = submitCmd.MarkFlagRequired(name)
	}
}
