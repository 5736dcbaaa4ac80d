package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wolfman30/survey-assistant/internal/app/bootstrap"
	"github.com/wolfman30/survey-assistant/internal/survey"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the survey questions and check skip-logic references",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := loadConfig(cmd)
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			cfg.CatalogPath = file
		}
		catalog, err := bootstrap.LoadCatalog(cfg, logger)
		if err != nil {
			return err
		}
		dangling := printCatalog(cmd.OutOrStdout(), catalog)
		if strict, _ := cmd.Flags().GetBool("strict"); strict && dangling > 0 {
			return fmt.Errorf("catalog has %d dangling references", dangling)
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().String("file", "", "Catalog JSON file (overrides CATALOG_PATH)")
	catalogCmd.Flags().Bool("strict", false, "Fail when skip logic points at missing questions")
}

// printCatalog writes the catalog and returns the number of dangling references.
func printCatalog(out io.Writer, catalog *survey.Catalog) int {
	fmt.Fprintf(out, "%s (%d questions)\n", catalog.Title(), catalog.Len())
	fmt.Fprintln(out, strings.Repeat("─", 60))

	for _, q := range catalog.Questions() {
		fmt.Fprintf(out, "%3d. %s\n", q.ID, q.Text)
		if desc := q.Options.Describe(); desc != "" {
			fmt.Fprintf(out, "     options: %s\n", desc)
		}
		if q.MultiSelect {
			fmt.Fprintln(out, "     multi-select")
		}
		keys := make([]string, 0, len(q.SkipLogic))
		for k := range q.SkipLogic {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "     if %q -> %s\n", k, q.SkipLogic[k])
		}
		if q.Next != "" {
			fmt.Fprintf(out, "     next -> %s\n", q.Next)
		}
	}

	dangling := catalog.DanglingReferences()
	if len(dangling) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Dangling references (treated as end of survey):")
		for _, d := range dangling {
			fmt.Fprintf(out, "  %s\n", d)
		}
	}
	return len(dangling)
}
