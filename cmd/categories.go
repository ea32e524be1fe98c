package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"clearfeed/config"
	"clearfeed/types"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List configured categories and their sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		sources, err := config.LoadSources(loadConfig().FeedsConfig)
		if err != nil {
			return err
		}
		printCategories(os.Stdout, sources.Info())
		return nil
	},
}

func printCategories(w io.Writer, categories []types.CategoryInfo) {
	for _, c := range categories {
		fmt.Fprintf(w, "%-12s %s\n", c.ID, strings.Join(c.Sources, ", "))
	}
}
