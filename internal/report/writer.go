package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"go.uber.org/zap"

	"github.com/skylane-qa/flightcheck/internal/config"
	"github.com/skylane-qa/flightcheck/internal/logging"
)

// LatestName is the copy of the most recent HTML report.
const LatestName = "latest_report.html"

// Artifacts lists the files written for a run. Disabled outputs are "".
type Artifacts struct {
	HTML    string
	Latest  string
	XLSX    string
	Metrics string
}

// Writer writes run artifacts into the report directory.
type Writer struct {
	cfg    config.ReportConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewWriter creates a writer for cfg.
func NewWriter(cfg config.ReportConfig, logger *zap.Logger) *Writer {
	return &Writer{cfg: cfg, logger: logger.Named("report"), now: time.Now}
}

// Write renders every enabled artifact. Outputs are independent: a failing
// one does not stop the others, and all errors are returned joined.
func (w *Writer) Write(run *Run) (Artifacts, error) {
	var out Artifacts
	if err := os.MkdirAll(w.cfg.Dir, 0o755); err != nil {
		return out, fmt.Errorf("failed to create report directory: %w", err)
	}
	stamp := run.StartedAt.Format(logging.TimestampLayout)

	var errs []error
	htmlPath := filepath.Join(w.cfg.Dir, "report_"+stamp+".html")
	if err := w.writeHTML(htmlPath, run); err != nil {
		errs = append(errs, err)
	} else {
		out.HTML = htmlPath
		latest := filepath.Join(w.cfg.Dir, LatestName)
		if err := copyFile(htmlPath, latest); err != nil {
			errs = append(errs, fmt.Errorf("copy latest report: %w", err))
		} else {
			out.Latest = latest
		}
	}

	if w.cfg.XLSX {
		path := filepath.Join(w.cfg.Dir, "report_"+stamp+".xlsx")
		if err := WriteXLSX(path, run); err != nil {
			errs = append(errs, err)
		} else {
			out.XLSX = path
		}
	}

	if w.cfg.Metrics {
		path := filepath.Join(w.cfg.Dir, "metrics.prom")
		if err := WriteMetrics(path, run); err != nil {
			errs = append(errs, err)
		} else {
			out.Metrics = path
		}
	}

	w.logger.Info("report written",
		zap.String("html", out.HTML),
		zap.String("xlsx", out.XLSX),
		zap.String("metrics", out.Metrics))
	return out, errors.Join(errs...)
}

func (w *Writer) writeHTML(path string, run *Run) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := RenderHTML(f, run, w.now()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Entry is one report file found on disk.
type Entry struct {
	Name     string
	Path     string
	Modified time.Time
	Age      string
	Size     int64
}

// List returns the report files in dir, newest first.
func List(dir string, now time.Time) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read report directory: %w", err)
	}

	var out []Entry
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasPrefix(name, "report_") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Name:     name,
			Path:     filepath.Join(dir, name),
			Modified: info.ModTime(),
			Age:      timeago.English.FormatReference(info.ModTime(), now),
			Size:     info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Modified.Equal(out[j].Modified) {
			return out[i].Name > out[j].Name
		}
		return out[i].Modified.After(out[j].Modified)
	})
	return out, nil
}
