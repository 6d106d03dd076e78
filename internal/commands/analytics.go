package commands

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/coachboard/coachboard-client/internal/analytics"
	"github.com/coachboard/coachboard-client/internal/api"
	"github.com/coachboard/coachboard-client/internal/export"
)

var (
	analyticsFormat string
	analyticsOutput string
	analyticsForce  bool
)

var AnalyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Dashboard metrics and reports",
}

var analyticsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the analytics dashboard",
	RunE:  runAnalyticsShow,
}

var analyticsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export analytics to a file",
	Long: `Export analytics to a file.

json and xlsx are built locally from the current snapshot. pdf and excel
download the server-rendered report.`,
	RunE: runAnalyticsExport,
}

func init() {
	analyticsExportCmd.Flags().StringVarP(&analyticsFormat, "format", "f", "json", "json, xlsx, pdf or excel")
	analyticsExportCmd.Flags().StringVarP(&analyticsOutput, "output", "o", "", "Output file (default generated name)")
	analyticsExportCmd.Flags().BoolVar(&analyticsForce, "force", false, "Overwrite an existing file")

	AnalyticsCmd.AddCommand(analyticsShowCmd)
	AnalyticsCmd.AddCommand(analyticsExportCmd)
}

// loadSnapshot fetches the summary and the raw collections it is merged with.
func loadSnapshot(ctx context.Context, a *app) (analytics.Snapshot, error) {
	resp, err := a.api.Analytics(ctx)
	if err != nil {
		return analytics.Snapshot{}, err
	}
	tasks, err := a.api.Tasks.List(ctx, api.Page{})
	if err != nil {
		return analytics.Snapshot{}, err
	}
	risks, err := a.api.Risks.List(ctx, api.Page{})
	if err != nil {
		return analytics.Snapshot{}, err
	}
	return analytics.BuildSnapshot(resp, tasks, risks, time.Now()), nil
}

func runAnalyticsShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, screenAnalytics, func(a *app) error {
		s, err := loadSnapshot(cmd.Context(), a)
		if err != nil {
			return err
		}
		if JSONOutput {
			return printJSON(a.out, s)
		}

		fmt.Fprintln(a.out, titleStyle.Render("Analytics"))
		fmt.Fprintln(a.out)
		printField(a.out, "Tasks", fmt.Sprintf("%d (%d done)", s.Totals.TotalTasks, s.Totals.CompletedTasks))
		printField(a.out, "Completion rate", fmt.Sprintf("%.1f%%", s.CompletionRate))
		printField(a.out, "Velocity", fmt.Sprintf("%.1f tasks/week", s.Velocity))
		printField(a.out, "Avg lead time", fmt.Sprintf("%.1f days", s.AverageLeadTime))
		printField(a.out, "Risks", fmt.Sprintf("%d (%d open)", s.Totals.TotalRisks, s.Totals.OpenRisks))
		printField(a.out, "Risk score", fmt.Sprintf("%.1f/100 (%d points)", s.RiskScore, s.TotalRiskPoints))
		printField(a.out, "AI requests", s.Totals.AIRequestsCount)

		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, titleStyle.Render("Tasks by status"))
		pct := analytics.TaskPercentages(s.TaskDistribution)
		for _, b := range s.TaskDistribution {
			fmt.Fprintf(a.out, "%s %s %3d (%d%%)\n", labelStyle.Render(strings.ReplaceAll(b.Name, "_", " ")),
				bar(float64(pct[b.Name]), b.Color), b.Count, pct[b.Name])
		}

		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, titleStyle.Render("Risks by severity"))
		for _, b := range s.RiskBars {
			fmt.Fprintf(a.out, "%s %s %3d (%.1f%%)\n", labelStyle.Render(b.Name), bar(b.Width, b.Color), b.Count, b.Width)
		}

		if len(s.VelocitySeries) > 0 {
			fmt.Fprintln(a.out)
			fmt.Fprintln(a.out, titleStyle.Render("Velocity"))
			rows := make([][]string, 0, len(s.VelocitySeries))
			for _, p := range s.VelocitySeries {
				rows = append(rows, []string{p.Period, fmt.Sprint(p.TasksCompleted), fmt.Sprintf("%.2f", p.Average)})
			}
			fmt.Fprintln(a.out, renderTable([]string{"Week", "Completed", "Average"}, rows))
		}
		return nil
	})
}

func runAnalyticsExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(analyticsFormat)
	return withApp(cmd, screenAnalytics, func(a *app) error {
		var (
			path string
			data []byte
		)
		switch format {
		case "pdf", "excel":
			report, err := a.api.ExportReport(cmd.Context(), api.ReportFormat(format))
			if err != nil {
				return err
			}
			path, data = filepath.Base(report.Filename), report.Data
		case "json", "xlsx":
			s, err := loadSnapshot(cmd.Context(), a)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := export.Snapshot(&buf, s, export.Format(format)); err != nil {
				return err
			}
			path = export.Filename(export.AnalyticsPrefix, export.Format(format), time.Now())
			data = buf.Bytes()
		default:
			return fmt.Errorf("unsupported format %q: expected json, xlsx, pdf or excel", analyticsFormat)
		}

		if analyticsOutput != "" {
			path = analyticsOutput
		}
		if err := writeFile(path, data, analyticsForce); err != nil {
			return err
		}
		fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Exported %s (%d bytes)", path, len(data))))
		return nil
	})
}
