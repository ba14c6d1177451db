package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

type getOptions struct {
	category string
	dialect  string
	json     bool
}

func newGetCmd(root *rootOptions) *cobra.Command {
	opts := &getOptions{}

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch a quote and rewrite it in a dialect",
		Example: `  quotectl get --type zen --dialect pirate
  quotectl get --type software --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.components()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			c.Provider.Restore(cmd.Context())

			translation, err := c.Service.Translate(cmd.Context(), opts.category, opts.dialect)
			if err != nil {
				return err
			}

			return printTranslation(cmd.OutOrStdout(), translation, opts.json)
		},
	}

	cmd.Flags().StringVarP(&opts.category, "type", "t", "", "quote category (required)")
	cmd.Flags().StringVarP(&opts.dialect, "dialect", "d", domain.DefaultStyle.String(), "dialect to rewrite the quote in")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func printTranslation(w io.Writer, t *domain.Translation, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(map[string]string{
			"original":   t.Original.String(),
			"translated": t.Translated,
			"type":       t.Category.String(),
			"dialect":    t.Style.String(),
		})
	}

	_, err := fmt.Fprintf(w, "%s\n\n  (%s, originally: %s)\n", t.Translated, t.Style, t.Original)

	return err
}

// The listing commands print the closed sets and need no configuration.
func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List quote categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, category := range domain.Categories() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), category); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func newStylesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "styles",
		Aliases: []string{"dialects"},
		Short:   "List dialects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, style := range domain.Styles() {
				line := style.String()
				if style == domain.DefaultStyle {
					line += " (default)"
				}

				if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
