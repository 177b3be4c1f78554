package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Show the service's about page",
	RunE: func(cmd *cobra.Command, _ []string) error {
		asHTML, _ := cmd.Flags().GetBool("html")

		var (
			text string
			err  error
		)
		if asHTML {
			text, err = app.Content.AboutHTML(cmd.Context())
		} else {
			text, err = app.Content.AboutMarkdown(cmd.Context())
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show the service's news",
	RunE: func(cmd *cobra.Command, _ []string) error {
		asHTML, _ := cmd.Flags().GetBool("html")
		out := cmd.OutOrStdout()

		if asHTML {
			items, err := app.Content.RenderedNews(cmd.Context())
			if err != nil {
				return err
			}
			for _, item := range items {
				fmt.Fprintf(out, "<article data-url=%q>%s</article>\n", item.URL, item.HTML)
			}
			return nil
		}

		items, err := app.Content.News(cmd.Context())
		if err != nil {
			return err
		}
		for _, item := range items {
			fmt.Fprintf(out, "- %s\n", item.Text)
			if item.URL != "" {
				fmt.Fprintf(out, "  %s\n", item.URL)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(aboutCmd, newsCmd)
	aboutCmd.Flags().Bool("html", false, "render markdown to sanitized HTML")
	newsCmd.Flags().Bool("html", false, "render markdown to sanitized HTML")
}
