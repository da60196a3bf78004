package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

var xlsxHeaders = []string{
	"Test", "File", "Tags", "Status", "Attempts", "Duration (s)", "Error kind", "Failure", "URL", "Started",
}

// WriteXLSX saves one row per case plus a summary sheet.
func WriteXLSX(path string, run *Run) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &xlsxHeaders); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(xlsxHeaders), 1)
	if err := f.SetCellStyle(resultsSheet, "A1", last, header); err != nil {
		return err
	}

	for i, res := range run.Results {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			res.Name,
			res.File,
			strings.Join(res.Tags, ", "),
			string(res.Status),
			res.Attempts,
			res.Duration.Seconds(),
			res.ErrorKind,
			res.Failure,
			res.URL,
			res.StartedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %s: %w", res.Name, err)
		}
	}

	_ = f.SetColWidth(resultsSheet, "A", "A", 40)
	_ = f.SetColWidth(resultsSheet, "H", "H", 80)
	if len(run.Results) > 0 {
		bottom, _ := excelize.CoordinatesToCellName(len(xlsxHeaders), len(run.Results)+1)
		if err := f.AutoFilter(resultsSheet, "A1:"+bottom, nil); err != nil {
			return fmt.Errorf("add filter: %w", err)
		}
	}

	if err := writeSummarySheet(f, run); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, run *Run) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	s := run.Summary()
	rows := [][]interface{}{
		{"Run", run.ID},
		{"Title", run.Title},
		{"Environment", run.Environment},
		{"Filter", run.Filter},
		{"Started", run.StartedAt.Format("2006-01-02 15:04:05")},
		{"Duration (s)", run.Duration().Seconds()},
		{"Total", s.Total},
		{"Passed", s.Passed},
		{"Rerun", s.Rerun},
		{"Failed", s.Failed},
		{"Skipped", s.Skipped},
		{"Pass rate (%)", s.PassRate()},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 16)
}
