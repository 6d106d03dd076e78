package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/coachboard/coachboard-client/internal/api"
	"github.com/coachboard/coachboard-client/internal/logging"
	"github.com/coachboard/coachboard-client/internal/models"
)

// resourceView describes how one CRUD resource is printed
type resourceView[T, C, U any] struct {
	name    string
	screen  string
	pick    func(*api.Client) *api.Resource[T, C, U]
	headers []string
	row     func(T) []string
	example string
}

// newResourceCmd builds "<name> list|get|create|update|delete" for a resource.
func newResourceCmd[T, C, U any](v resourceView[T, C, U], short string) *cobra.Command {
	root := &cobra.Command{
		Use:   v.name,
		Short: short,
	}

	var skip, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List " + v.name,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, v.screen, func(a *app) error {
				items, err := v.pick(a.api).List(cmd.Context(), api.Page{Skip: skip, Limit: limit})
				if err != nil {
					return err
				}
				return v.print(a, items)
			})
		},
	}
	list.Flags().IntVar(&skip, "skip", 0, "Number of items to skip")
	list.Flags().IntVar(&limit, "limit", 100, "Maximum number of items")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, v.screen, func(a *app) error {
				item, err := v.pick(a.api).Get(cmd.Context(), id)
				if err != nil {
					return v.notFound(id, err)
				}
				return v.print(a, []T{*item})
			})
		},
	}

	var createData string
	create := &cobra.Command{
		Use:     "create",
		Short:   "Create an item from a JSON payload",
		Example: fmt.Sprintf("  coachboard %s create --data '%s'", v.name, v.example),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, v.screen, func(a *app) error {
				var in C
				if err := a.readPayload(createData, &in); err != nil {
					return err
				}
				item, err := v.pick(a.api).Create(cmd.Context(), &in)
				if err != nil {
					return err
				}
				logging.WithResource(a.logger, v.name, 0).Info("created")
				return v.print(a, []T{*item})
			})
		},
	}
	create.Flags().StringVar(&createData, "data", "", "JSON payload, @file or - for stdin")

	var updateData string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Apply a partial JSON update",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, v.screen, func(a *app) error {
				var in U
				if err := a.readPayload(updateData, &in); err != nil {
					return err
				}
				item, err := v.pick(a.api).Update(cmd.Context(), id, &in)
				if err != nil {
					return v.notFound(id, err)
				}
				logging.WithResource(a.logger, v.name, id).Info("updated")
				return v.print(a, []T{*item})
			})
		},
	}
	update.Flags().StringVar(&updateData, "data", "", "JSON payload, @file or - for stdin")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, v.screen, func(a *app) error {
				if err := v.pick(a.api).Delete(cmd.Context(), id); err != nil {
					return v.notFound(id, err)
				}
				logging.WithResource(a.logger, v.name, id).Info("deleted")
				fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Deleted %s %d", v.name, id)))
				return nil
			})
		},
	}

	root.AddCommand(list, get, create, update, del)
	return root
}

// notFound names the missing item on a 404 and passes other errors through.
func (v resourceView[T, C, U]) notFound(id int64, err error) error {
	if api.IsNotFound(err) {
		return fmt.Errorf("%s %d not found: %w", v.name, id, err)
	}
	return err
}

func (v resourceView[T, C, U]) print(a *app, items []T) error {
	if JSONOutput {
		if len(items) == 1 {
			return printJSON(a.out, items[0])
		}
		return printJSON(a.out, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, dimStyle.Render("No "+v.name+" found"))
		return nil
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, v.row(it))
	}
	fmt.Fprintln(a.out, renderTable(v.headers, rows))
	return nil
}

func idStr(n int64) string { return strconv.FormatInt(n, 10) }

func date(t *models.Timestamp) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

var taskView = resourceView[models.Task, models.TaskCreate, models.TaskUpdate]{
	name:    "tasks",
	screen:  screenTasks,
	pick:    func(c *api.Client) *api.Resource[models.Task, models.TaskCreate, models.TaskUpdate] { return c.Tasks },
	headers: []string{"ID", "Title", "Status", "Priority", "Due"},
	row: func(t models.Task) []string {
		return []string{idStr(t.ID), truncate(t.Title, 40), string(t.Status), string(t.Priority), date(t.DueDate)}
	},
	example: `{"title":"Plan deload week","priority":"high"}`,
}

var riskView = resourceView[models.Risk, models.RiskCreate, models.RiskUpdate]{
	name:    "risks",
	screen:  screenRisks,
	pick:    func(c *api.Client) *api.Resource[models.Risk, models.RiskCreate, models.RiskUpdate] { return c.Risks },
	headers: []string{"ID", "Title", "Severity", "Probability", "Impact", "Score", "Status"},
	row: func(r models.Risk) []string {
		return []string{
			idStr(r.ID), truncate(r.Title, 36), string(r.Severity), string(r.Probability),
			string(r.Impact), strconv.Itoa(riskScore(r)), string(r.Status),
		}
	},
	example: `{"title":"Venue unavailable","probability":"medium","impact":"high"}`,
}

var projectView = resourceView[models.Project, models.ProjectCreate, models.ProjectUpdate]{
	name:    "projects",
	screen:  screenProjects,
	pick:    func(c *api.Client) *api.Resource[models.Project, models.ProjectCreate, models.ProjectUpdate] { return c.Projects },
	headers: []string{"ID", "Name", "Status", "Progress", "Due"},
	row: func(p models.Project) []string {
		return []string{idStr(p.ID), truncate(p.Name, 40), string(p.Status), fmt.Sprintf("%d%%", p.Progress), date(p.DueDate)}
	},
	example: `{"name":"Spring season","progress":10}`,
}

var postView = resourceView[models.Post, models.PostCreate, models.PostUpdate]{
	name:    "posts",
	screen:  screenPosts,
	pick:    func(c *api.Client) *api.Resource[models.Post, models.PostCreate, models.PostUpdate] { return c.Posts },
	headers: []string{"ID", "Title", "Likes", "Comments", "Shares", "Engagement", "Published"},
	row: func(p models.Post) []string {
		return []string{
			idStr(p.ID), truncate(p.Title, 36), strconv.Itoa(p.Likes), strconv.Itoa(p.Comments),
			strconv.Itoa(p.Shares), fmt.Sprintf("%.1f%%", p.EngagementRate), date(p.PublishedAt),
		}
	},
	example: `{"title":"Leg day recap","content":"Squats, lunges, sled pushes"}`,
}

var (
	TasksCmd    = newResourceCmd(taskView, "Manage tasks")
	RisksCmd    = newResourceCmd(riskView, "Manage risks")
	ProjectsCmd = newResourceCmd(projectView, "Manage projects")
	PostsCmd    = newResourceCmd(postView, "Manage posts")
)
