package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/coachboard/coachboard-client/internal/analytics"
	"github.com/coachboard/coachboard-client/internal/api"
	"github.com/coachboard/coachboard-client/internal/models"
)

var tasksBoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show tasks grouped by status",
	RunE:  runTasksBoard,
}

var risksScoreCmd = &cobra.Command{
	Use:   "score <probability> <impact>",
	Short: "Compute a risk score from probability and impact",
	Long: `Compute probability weight times impact weight.

Probability is low, medium or high; impact is low, medium, high or critical.
Scores range from 1 to 12.`,
	Args: cobra.ExactArgs(2),
	RunE: runRisksScore,
}

func init() {
	TasksCmd.AddCommand(tasksBoardCmd)
	RisksCmd.AddCommand(risksScoreCmd)
}

func riskScore(r models.Risk) int {
	return analytics.RiskScore(r.Probability, r.Impact)
}

// groupByStatus keeps board order and drops tasks with unknown statuses.
func groupByStatus(tasks []models.Task) (map[models.TaskStatus][]models.Task, int) {
	groups := make(map[models.TaskStatus][]models.Task, len(models.TaskStatuses))
	skipped := 0
	for _, t := range tasks {
		if !t.Status.Valid() {
			skipped++
			continue
		}
		groups[t.Status] = append(groups[t.Status], t)
	}
	return groups, skipped
}

func runTasksBoard(cmd *cobra.Command, args []string) error {
	return withApp(cmd, screenTasks, func(a *app) error {
		tasks, err := a.api.Tasks.List(cmd.Context(), api.Page{})
		if err != nil {
			return err
		}
		groups, skipped := groupByStatus(tasks)

		if JSONOutput {
			return printJSON(a.out, groups)
		}

		buckets := analytics.TaskDistribution(tasks)
		columns := make([]string, 0, len(buckets))
		for _, b := range buckets {
			header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(b.Color)).
				Render(fmt.Sprintf("%s (%d)", strings.ReplaceAll(b.Name, "_", " "), b.Count))
			lines := []string{header, ""}
			for _, t := range groups[models.TaskStatus(b.Name)] {
				lines = append(lines, fmt.Sprintf("#%d %s", t.ID, truncate(t.Title, 24)))
				lines = append(lines, dimStyle.Render("   "+string(t.Priority)))
			}
			columns = append(columns, columnStyle.Render(strings.Join(lines, "\n")))
		}
		fmt.Fprintln(a.out, lipgloss.JoinHorizontal(lipgloss.Top, columns...))
		if skipped > 0 {
			fmt.Fprintln(a.out, dimStyle.Render(fmt.Sprintf("%d task(s) with an unknown status not shown", skipped)))
		}
		return nil
	})
}

func runRisksScore(cmd *cobra.Command, args []string) error {
	probability := models.ParseLevel(args[0])
	impact := models.ParseLevel(args[1])
	if !probability.ValidProbability() {
		return fmt.Errorf("invalid probability %q: expected low, medium or high", args[0])
	}
	if !impact.Valid() {
		return fmt.Errorf("invalid impact %q: expected low, medium, high or critical", args[1])
	}

	score := analytics.RiskScore(probability, impact)
	out := cmd.OutOrStdout()
	if JSONOutput {
		return printJSON(out, map[string]any{"probability": probability, "impact": impact, "score": score})
	}
	fmt.Fprintf(out, "%s %d/%d\n", labelStyle.Render("Risk score"), score, analytics.MaxRiskScore)
	return nil
}
