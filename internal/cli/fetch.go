package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"media-aggregator/internal/aggregator"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var fetchJSON bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Refresh every feed once and print the homepage",
	RunE:  fetchAction,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "print the homepage view as JSON")
}

func fetchAction(cmd *cobra.Command, _ []string) error {
	a, err := newApp(settings, log, nil)
	if err != nil {
		return err
	}

	snap, err := a.svc.Refresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	out := cmd.OutOrStdout()
	if fetchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(a.svc.Homepage())
	}
	printHomepage(out, snap.Info(), a.svc.Homepage())
	return nil
}

func printHomepage(w io.Writer, info aggregator.RefreshInfo, view aggregator.HomepageView) {
	fmt.Fprintf(w, "%s videos from %d media", humanize.Comma(int64(info.Videos)), info.Media)
	if len(info.Failed) > 0 {
		fmt.Fprintf(w, " (failed: %s)", strings.Join(info.Failed, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "\n== Top ==")
	printVideos(w, view.Top)
	for _, b := range aggregator.Buckets {
		fmt.Fprintf(w, "\n== %s ==\n", b)
		printVideos(w, view.ByBucket[b])
	}
}

func printVideos(w io.Writer, videos []aggregator.EnrichedVideo) {
	if len(videos) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, v := range videos {
		fmt.Fprintf(w, "  %-16s %-14s %s\n", v.MediaID, humanize.Time(v.PublishedAt), v.Title)
	}
}
