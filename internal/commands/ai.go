package commands

import (
	"bytes"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coachboard/coachboard-client/internal/api"
	"github.com/coachboard/coachboard-client/internal/export"
	"github.com/coachboard/coachboard-client/internal/models"
)

var (
	aiPrompt string
	aiType   string
	aiModel  string
	aiExport string
	aiOutput string
	aiSkip   int
	aiLimit  int
	aiFormat string
	aiForce  bool
)

var AICmd = &cobra.Command{
	Use:   "ai",
	Short: "AI studio: generate content and review history",
}

var aiGenerateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate content from a prompt",
	Long: `Generate content from a prompt.

Request types: caption, hashtag, workout_plan, generate_risks, generate_tasks, content.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAIGenerate,
}

var aiHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous generations",
	RunE:  runAIHistory,
}

var aiExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the generation history as JSON or HTML",
	RunE:  runAIExport,
}

func init() {
	aiGenerateCmd.Flags().StringVar(&aiPrompt, "prompt", "", "Prompt text")
	aiGenerateCmd.Flags().StringVarP(&aiType, "type", "t", models.AIRequestContent, "Request type")
	aiGenerateCmd.Flags().StringVarP(&aiModel, "model", "m", models.DefaultAIModel, "Model name")
	aiGenerateCmd.Flags().StringVar(&aiExport, "export", "", "Also export the result as json or html")
	aiGenerateCmd.Flags().StringVarP(&aiOutput, "output", "o", "", "Export file (default generated name)")

	aiHistoryCmd.Flags().IntVar(&aiSkip, "skip", 0, "Number of entries to skip")
	aiHistoryCmd.Flags().IntVar(&aiLimit, "limit", 20, "Maximum number of entries")

	aiExportCmd.Flags().StringVarP(&aiFormat, "format", "f", "json", "json or html")
	aiExportCmd.Flags().IntVar(&aiLimit, "limit", 20, "Maximum number of history entries")
	aiExportCmd.Flags().StringVarP(&aiOutput, "output", "o", "", "Output file (default generated name)")
	aiExportCmd.Flags().BoolVar(&aiForce, "force", false, "Overwrite an existing file")

	AICmd.AddCommand(aiGenerateCmd)
	AICmd.AddCommand(aiHistoryCmd)
	AICmd.AddCommand(aiExportCmd)
}

func runAIGenerate(cmd *cobra.Command, args []string) error {
	prompt := aiPrompt
	if len(args) == 1 {
		prompt = args[0]
	}
	return withApp(cmd, screenAI, func(a *app) error {
		req := &models.AIGenerateRequest{Prompt: prompt, RequestType: aiType, Model: aiModel}
		resp, err := a.api.Generate(cmd.Context(), req)
		if err != nil {
			return err
		}

		if JSONOutput {
			if err := printJSON(a.out, resp); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(a.out, resp.Content())
			fmt.Fprintln(a.out)
			fmt.Fprintln(a.out, dimStyle.Render(fmt.Sprintf("%s · %s · %d tokens", req.RequestType, req.Model, resp.TokensUsed)))
		}

		if aiExport == "" {
			return nil
		}
		s := export.AIStudioSession{
			Prompt:  req.Prompt,
			Model:   req.Model,
			Results: []export.AIResult{export.NewAIResult(resp.Content(), time.Now())},
		}
		return writeAIStudio(a, s, aiExport, false)
	})
}

func runAIHistory(cmd *cobra.Command, args []string) error {
	return withApp(cmd, screenAI, func(a *app) error {
		history, err := a.api.History(cmd.Context(), api.Page{Skip: aiSkip, Limit: aiLimit})
		if err != nil {
			return err
		}
		if JSONOutput {
			return printJSON(a.out, history)
		}
		if len(history) == 0 {
			fmt.Fprintln(a.out, dimStyle.Render("No AI requests yet"))
			return nil
		}
		rows := make([][]string, 0, len(history))
		for _, h := range history {
			rows = append(rows, []string{
				idStr(h.ID), h.RequestType, truncate(h.Prompt, 40),
				fmt.Sprint(h.TokensUsed), h.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		fmt.Fprintln(a.out, renderTable([]string{"ID", "Type", "Prompt", "Tokens", "Created"}, rows))
		return nil
	})
}

func runAIExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd, screenAI, func(a *app) error {
		history, err := a.api.History(cmd.Context(), api.Page{Limit: aiLimit})
		if err != nil {
			return err
		}

		s := export.AIStudioSession{History: history}
		for i := range history {
			h := &history[i]
			if i == 0 {
				s.Prompt = h.Prompt
			}
			if content := h.Content(); content != "" {
				s.Results = append(s.Results, export.NewAIResult(content, h.CreatedAt.Time))
			}
		}
		return writeAIStudio(a, s, aiFormat, aiForce)
	})
}

func writeAIStudio(a *app, s export.AIStudioSession, rawFormat string, force bool) error {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return err
	}
	now := time.Now()
	var buf bytes.Buffer
	if err := export.AIStudio(&buf, s, format, now); err != nil {
		return err
	}

	path := aiOutput
	if path == "" {
		path = export.Filename(export.AIStudioPrefix, format, now)
	}
	if err := writeFile(path, buf.Bytes(), force); err != nil {
		return err
	}
	fmt.Fprintln(a.out, successStyle.Render("Exported "+path))
	return nil
}
