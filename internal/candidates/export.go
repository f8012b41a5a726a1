package candidates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ranker/internal/logging"
	"ranker/internal/types"
)

// DefaultDateFormat renders like "Mar 1, 2024 @ 12:00".
const DefaultDateFormat = "Jan 2, 2006 @ 15:04"

// Exporter writes rankings. The zero value uses DefaultDateFormat.
type Exporter struct {
	DateFormat string
}

func (e Exporter) stamp(at time.Time) string {
	layout := e.DateFormat
	if layout == "" {
		layout = DefaultDateFormat
	}
	return at.Format(layout)
}

// Title is the header line, e.g. "Top 3 Rankings (Completed on Mar 1, 2024 @ 12:00):".
func (e Exporter) Title(ranking []string, at time.Time) string {
	return fmt.Sprintf("Top %d Rankings (Completed on %s):", len(ranking), e.stamp(at))
}

// Text renders the plain text ranking.
func (e Exporter) Text(ranking []string, at time.Time) string {
	var b strings.Builder
	b.WriteString(e.Title(ranking, at))
	b.WriteByte('\n')
	for i, name := range ranking {
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
	}
	return b.String()
}

// Markdown renders the ranking as a Markdown heading and ordered list.
func (e Exporter) Markdown(ranking []string, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Top %d Rankings\n\n", len(ranking))
	fmt.Fprintf(&b, "_Completed on %s_\n\n", e.stamp(at))
	for i, name := range ranking {
		fmt.Fprintf(&b, "%d. %s\n", i+1, escapeMarkdown(name))
	}
	return b.String()
}

// escapeMarkdown keeps names from being read as emphasis or links.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"[", `\[`,
		"]", `\]`,
		"#", `\#`,
	)
	return r.Replace(s)
}

// Export writes ranking to path. Targets ending in .md get Markdown.
// Failures wrap types.ErrIO.
func (e Exporter) Export(path string, ranking []string, at time.Time) error {
	body := e.Text(ranking, at)
	if strings.EqualFold(filepath.Ext(path), ".md") {
		body = e.Markdown(ranking, at)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("export %s: %v: %w", path, err, types.ErrIO)
		}
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		logging.CandidatesError("export to %s failed: %v", path, err)
		return fmt.Errorf("export %s: %v: %w", path, err, types.ErrIO)
	}

	logging.Candidates("exported %d-candidate ranking to %s", len(ranking), path)
	return nil
}

// ExportAll writes every path concurrently and returns the first failure.
// Paths naming the same file are written once.
func (e Exporter) ExportAll(ctx context.Context, paths []string, ranking []string, at time.Time) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range UniquePaths(paths) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return e.Export(p, ranking, at)
		})
	}
	return g.Wait()
}

// UniquePaths drops every path that resolves to a file named earlier.
func UniquePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		key, err := filepath.Abs(p)
		if err != nil {
			key = filepath.Clean(p)
		}
		if seen[key] {
			logging.CandidatesDebug("skipping repeated export target %s", p)
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// Export writes ranking to path with the default date format.
func Export(path string, ranking []string, at time.Time) error {
	return Exporter{}.Export(path, ranking, at)
}

// ExportAll writes ranking to every path with the default date format.
func ExportAll(ctx context.Context, paths []string, ranking []string, at time.Time) error {
	return Exporter{}.ExportAll(ctx, paths, ranking, at)
}

// Markdown renders ranking with the default date format.
func Markdown(ranking []string, at time.Time) string {
	return Exporter{}.Markdown(ranking, at)
}
