package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/coachboard/coachboard-client/internal/analytics"
)

// Snapshot writes s as indented JSON or as an xlsx workbook.
func Snapshot(w io.Writer, s analytics.Snapshot, f Format) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, s)
	case FormatXLSX:
		return snapshotWorkbook(w, s)
	}
	return fmt.Errorf("snapshot export does not support %q", f)
}

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

func snapshotSheets(s analytics.Snapshot) []sheet {
	t := s.Totals
	summary := sheet{
		name:   "Summary",
		header: []any{"Metric", "Value"},
		rows: [][]any{
			{"Total Tasks", t.TotalTasks},
			{"Completed Tasks", t.CompletedTasks},
			{"Completion Rate", fmt.Sprintf("%.1f%%", s.CompletionRate)},
			{"Velocity", fmt.Sprintf("%.1f tasks/week", s.Velocity)},
			{"Average Lead Time", fmt.Sprintf("%.1f days", s.AverageLeadTime)},
			{"Total Risks", t.TotalRisks},
			{"Open Risks", t.OpenRisks},
			{"Risk Score", fmt.Sprintf("%.1f/100", s.RiskScore)},
			{"Total Risk Points", s.TotalRiskPoints},
			{"AI Requests", t.AIRequestsCount},
			{"Generated At", s.GeneratedAt.Format(time.RFC3339)},
		},
	}

	pct := analytics.TaskPercentages(s.TaskDistribution)
	tasks := sheet{name: "Tasks", header: []any{"Status", "Count", "Percent"}}
	for _, b := range s.TaskDistribution {
		tasks.rows = append(tasks.rows, []any{b.Name, b.Count, pct[b.Name]})
	}

	risks := sheet{name: "Risks", header: []any{"Severity", "Count", "Width %"}}
	for _, b := range s.RiskBars {
		risks.rows = append(risks.rows, []any{b.Name, b.Count, b.Width})
	}

	velocity := sheet{name: "Velocity", header: []any{"Week", "Tasks Completed", "Average"}}
	for _, p := range s.VelocitySeries {
		velocity.rows = append(velocity.rows, []any{p.Period, p.TasksCompleted, p.Average})
	}

	burndown := sheet{name: "Burndown", header: []any{"Date", "Remaining Tasks", "Completed Tasks"}}
	for _, p := range s.Burndown {
		burndown.rows = append(burndown.rows, []any{p.Date.Format("2006-01-02"), p.RemainingTasks, p.CompletedTasks})
	}

	return []sheet{summary, tasks, risks, velocity, burndown}
}

func snapshotWorkbook(w io.Writer, s analytics.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sh := range snapshotSheets(s) {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sh.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sh.name, err)
		}

		if err := f.SetSheetRow(sh.name, "A1", &sh.header); err != nil {
			return fmt.Errorf("failed to write %s header: %w", sh.name, err)
		}
		if err := f.SetRowStyle(sh.name, 1, 1, bold); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sh.name, err)
		}
		for r, row := range sh.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", sh.name, r+2, err)
			}
		}
		if err := f.SetColWidth(sh.name, "A", "C", 20); err != nil {
			return fmt.Errorf("failed to size %s columns: %w", sh.name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
