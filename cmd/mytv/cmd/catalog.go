package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Jash-k/MyTVStremioAddon/internal/catalog"
	"github.com/Jash-k/MyTVStremioAddon/internal/classify"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Build the channel catalog once and print it",
	Long: `Fetch the configured playlist, classify its entries and print the
resulting catalog in priority order. Useful for checking classification
rules against a playlist without starting the server.

  mytv catalog --category cricket
  mytv catalog --search sun --output json`,
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().String("playlist-url", "", "Upstream M3U playlist URL (overrides playlist.url)")
	catalogCmd.Flags().String("category", "", "Only list channels of this category")
	catalogCmd.Flags().String("search", "", "Only list channels whose name contains this text")
	catalogCmd.Flags().StringP("output", "o", "table", "Output format (table, json)")
	catalogCmd.Flags().Bool("stats", false, "Print ingestion statistics instead of channels")
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	cfg := appConfig
	flags := cmd.Flags()
	if v, ok := stringFlag(flags, "playlist-url"); ok {
		cfg.Playlist.URL = v
	}

	var category classify.Category
	if raw, _ := flags.GetString("category"); raw != "" {
		c, ok := classify.ParseCategory(raw)
		if !ok {
			return fmt.Errorf("unknown category %q", raw)
		}
		category = c
	}
	output, _ := flags.GetString("output")
	if output != "table" && output != "json" {
		return fmt.Errorf("unknown output format %q", output)
	}

	a := newApp(cfg, slog.Default())
	cat, err := a.catalog.Refresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("building catalog: %w", err)
	}

	if stats, _ := flags.GetBool("stats"); stats {
		return printJSON(cmd.OutOrStdout(), struct {
			Generation string                    `json:"generation"`
			Stats      catalog.Stats             `json:"stats"`
			ByCategory map[classify.Category]int `json:"by_category"`
		}{cat.Generation.String(), cat.Stats, cat.CountByCategory()})
	}

	search, _ := flags.GetString("search")
	channels := catalog.Search(cat.Filter(category), search)

	if output == "json" {
		return printJSON(cmd.OutOrStdout(), channels)
	}
	return printChannelTable(cmd.OutOrStdout(), channels)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printChannelTable(w io.Writer, channels []catalog.Channel) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRIORITY\tNAME\tCATEGORY\tQUALITY\tGROUP")
	for _, ch := range channels {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", ch.Priority, ch.CleanName, ch.Category, ch.Quality, ch.GroupLabel)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d channels\n", len(channels))
	return err
}
