package report

import (
	_ "embed"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/report.html
var reportTemplate []byte

var (
	templateOnce sync.Once
	compiled     *pongo2.Template
	compileErr   error
)

func loadTemplate() (*pongo2.Template, error) {
	templateOnce.Do(func() {
		compiled, compileErr = pongo2.FromBytes(reportTemplate)
	})
	return compiled, compileErr
}

type htmlView struct {
	Title       string
	Environment string
	RunID       string
	Generated   string
	Duration    string
	LogFile     string
	SummaryHTML string
	Rows        []htmlRow
}

type htmlRow struct {
	Name      string
	Display   string
	File      string
	Tags      string
	Status    string
	Attempts  int
	Duration  string
	Failure   string
	ErrorKind string
	Errors    []string
	URL       string
	Images    []htmlImage
}

type htmlImage struct {
	Name    string
	DataURI string
}

// RenderHTML writes the self-contained HTML report. Screenshots are embedded
// as data URIs; ones that cannot be read are left out.
func RenderHTML(w io.Writer, run *Run, generated time.Time) error {
	tpl, err := loadTemplate()
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}
	summary, err := SummaryHTML(run)
	if err != nil {
		return err
	}

	view := htmlView{
		Title:       run.Title,
		Environment: run.Environment,
		RunID:       run.ID,
		Generated:   generated.Format("2006-01-02 15:04:05"),
		Duration:    run.Duration().Round(time.Millisecond).String(),
		LogFile:     run.LogFile,
		SummaryHTML: summary,
	}
	if view.Title == "" {
		view.Title = "Test Report"
	}
	for _, res := range run.Results {
		view.Rows = append(view.Rows, htmlRow{
			Name:      res.Name,
			Display:   DisplayName(res.Name),
			File:      res.File,
			Tags:      strings.Join(res.Tags, ", "),
			Status:    string(res.Status),
			Attempts:  res.Attempts,
			Duration:  res.Duration.Round(time.Millisecond).String(),
			Failure:   res.Failure,
			ErrorKind: res.ErrorKind,
			Errors:    res.Errors,
			URL:       res.URL,
			Images:    embedImages(res.Screenshots),
		})
	}

	if err := tpl.ExecuteWriter(pongo2.Context{"report": view}, w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func embedImages(paths []string) []htmlImage {
	var out []htmlImage
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		out = append(out, htmlImage{
			Name:    filepath.Base(p),
			DataURI: "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
		})
	}
	return out
}
