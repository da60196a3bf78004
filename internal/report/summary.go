package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// SummaryMarkdown renders the run summary and failure list as markdown.
func SummaryMarkdown(run *Run) string {
	s := run.Summary()
	var b strings.Builder

	fmt.Fprintf(&b, "**Run** `%s`", run.ID)
	if run.Filter != "" {
		fmt.Fprintf(&b, " with filter `%s`", codeSpan(run.Filter))
	}
	b.WriteString("\n\n")

	b.WriteString("| Total | Passed | Rerun | Failed | Skipped | Pass rate |\n")
	b.WriteString("|---:|---:|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d | %.1f%% |\n", s.Total, s.Passed, s.Rerun, s.Failed, s.Skipped, s.PassRate())

	failures := run.Failures()
	if len(failures) == 0 {
		return b.String()
	}
	b.WriteString("\n### Failures\n\n")
	for _, f := range failures {
		fmt.Fprintf(&b, "- **%s** (%s): `%s`\n", f.Name, f.ErrorKind, codeSpan(f.Failure))
	}
	return b.String()
}

func codeSpan(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	return strings.Join(strings.Fields(s), " ")
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// SummaryHTML converts the markdown summary to sanitized HTML.
func SummaryHTML(run *Run) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(SummaryMarkdown(run)), &buf); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return bluemonday.UGCPolicy().Sanitize(buf.String()), nil
}
