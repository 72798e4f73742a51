package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
	"github.com/custodia-labs/clipsearch/internal/core/ports/driving"
)

var (
	queryJSON   bool
	queryMode   string
	queryCamera string
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search clips with a natural-language query",
	Long: `Searches stored clips for a natural-language query.

With no arguments an interactive prompt is started; type exit to quit.

Examples:
  clipsearch query "show the latest photo"
  clipsearch query "PCB missing capacitor" --mode pcb --json
  clipsearch query "critical issues at soldering station" --camera CAM-01`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	queryCmd.Flags().StringVarP(&queryMode, "mode", "m", "", "search mode: default, pcb or manufacturing (default: inferred)")
	queryCmd.Flags().StringVar(&queryCamera, "camera", "", "keep only manufacturing results from this camera")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	opts := domain.SearchOptions{
		Mode:         domain.SearchMode(queryMode),
		CameraFilter: queryCamera,
	}

	if len(args) > 0 {
		return searchOnce(cmd.Context(), cmd.OutOrStdout(), app.Search, strings.Join(args, " "), opts)
	}
	return repl(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), app.Search, opts)
}

func searchOnce(ctx context.Context, w io.Writer, search driving.SearchService, query string, opts domain.SearchOptions) error {
	result, err := search.Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if queryJSON {
		return writeResultJSON(w, result)
	}
	writeResultText(w, result)
	return nil
}

// repl reads one query per line until EOF or an exit word.
// Failed searches are reported and the loop continues.
func repl(ctx context.Context, r io.Reader, w io.Writer, search driving.SearchService, opts domain.SearchOptions) error {
	fmt.Fprintln(w, "Clip Search")
	fmt.Fprintln(w, "-----------")
	fmt.Fprintln(w, "Type 'exit' to quit")
	fmt.Fprintln(w)

	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "What would you like to search for? ")
		if !scanner.Scan() {
			fmt.Fprintln(w)
			return scanner.Err()
		}

		query := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(query) {
		case "":
			continue
		case "exit", "quit", "q":
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.Repeat("=", 60))
		if err := searchOnce(ctx, w, search, query, opts); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
		fmt.Fprintln(w, strings.Repeat("=", 60))
		fmt.Fprintln(w)
	}
}

func writeResultJSON(w io.Writer, result *domain.SearchResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeResultText(w io.Writer, result *domain.SearchResult) {
	if len(result.Results) == 0 {
		fmt.Fprintln(w, "No matching clips found.")
		return
	}

	fmt.Fprintf(w, "Found %d relevant clips:\n\n", len(result.Results))
	for i, r := range result.Results {
		fmt.Fprintf(w, "%d. %s (Relevance: %.1f%%)\n", i+1, r.Clip.ID, r.RelevanceScore*100)
		fmt.Fprintf(w, "   Camera: %s  Time: %s\n", r.Clip.CameraID, r.Clip.CreatedAt.Format(domain.TimestampLayout))
		if r.Clip.ImageRef != "" {
			fmt.Fprintf(w, "   URL: %s\n", truncate(r.Clip.ImageRef, 120))
		}
		fmt.Fprintf(w, "   Description: %s\n", r.Clip.Description)
		if e := r.Enrichment; e != nil {
			fmt.Fprintf(w, "   Zone: %s  Alert: %s  Issue: %s\n", e.Zone, e.AlertLevel, e.IssueType)
		}
		fmt.Fprintln(w)
	}
}

// truncate shortens inline data URIs for display
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
