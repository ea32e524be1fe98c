package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"clearfeed/types"

	"github.com/spf13/cobra"
)

var flagCategory string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch feeds once and print the articles as JSON",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&flagCategory, "category", "", "fetch a single category")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	agg, sources, _, err := newAggregator(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result := types.FeedResult{Category: flagCategory}
	if flagCategory != "" {
		if !sources.Has(flagCategory) {
			return fmt.Errorf("unknown category %q (available: %v)", flagCategory, sources.Categories())
		}
		result.Articles = agg.FetchCategory(ctx, flagCategory)
	} else {
		result.Articles = agg.FetchAll(ctx)
	}
	result.FetchedAt = time.Now().UTC()
	result.ArticleCount = len(result.Articles)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
