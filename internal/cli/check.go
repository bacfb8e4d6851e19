package cli

import (
	"context"
	"fmt"
	"io"

	"media-aggregator/internal/media"

	"github.com/spf13/cobra"
)

var checkProbe bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the media registry and optionally probe each feed",
	RunE:  checkAction,
}

func init() {
	checkCmd.Flags().BoolVar(&checkProbe, "probe", false, "fetch every feed and report its entry count")
}

func checkAction(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	reg, err := media.Load(settings.MediaFile)
	if err != nil {
		printCheck(out, false, "registry %s: %v", settings.MediaFile, err)
		return fmt.Errorf("load media registry: %w", err)
	}
	printCheck(out, true, "registry %s (%d media)", settings.MediaFile, reg.Len())

	fetcher := newFetcher(settings)
	ok := true
	for _, m := range reg.All() {
		if !m.HasFeed() {
			printInfo(out, "%s: no feed", m.ID)
			continue
		}
		if !checkProbe {
			printCheck(out, true, "%s: %s", m.ID, m.FeedURL)
			continue
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), settings.FetchTimeout)
		f, err := fetcher.Fetch(ctx, m.FeedURL)
		cancel()
		if err != nil {
			printCheck(out, false, "%s: %v", m.ID, err)
			ok = false
			continue
		}
		printCheck(out, true, "%s: %d entries", m.ID, len(f.Items))
	}

	if !ok {
		return fmt.Errorf("some feeds failed")
	}
	return nil
}

func printCheck(w io.Writer, pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Fprintf(w, "[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "[INFO] %s\n", fmt.Sprintf(format, args...))
}
