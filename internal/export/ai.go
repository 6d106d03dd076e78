package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/coachboard/coachboard-client/internal/models"
)

// AIResult is one generated answer shown in the studio
type AIResult struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAIResult(content string, at time.Time) AIResult {
	return AIResult{ID: uuid.NewString(), Content: content, Timestamp: at.UTC()}
}

// AIStudioSession is the prompt, its results and the server history.
type AIStudioSession struct {
	Prompt  string             `json:"prompt"`
	Model   string             `json:"model"`
	Results []AIResult         `json:"results"`
	History []models.AIRequest `json:"history"`
}

type aiStudioDocument struct {
	AIStudioSession
	ExportedAt time.Time `json:"exportedAt"`
}

var aiStudioTmpl = template.Must(template.New("ai-studio").Funcs(template.FuncMap{
	"markdown": renderMarkdown,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>AI Studio export</title>
</head>
<body>
<h1>AI Studio export</h1>
<p><strong>Model:</strong> {{.Model}} &middot; <strong>Exported:</strong> {{.ExportedAt.Format "2006-01-02 15:04:05 MST"}}</p>
<h2>Prompt</h2>
<pre>{{.Prompt}}</pre>
<h2>Results</h2>
{{range .Results}}<section id="result-{{.ID}}">
<p><em>{{.Timestamp.Format "2006-01-02 15:04:05"}}</em></p>
{{markdown .Content}}
</section>
{{else}}<p>No results.</p>
{{end}}{{if .History}}<h2>History</h2>
<ul>
{{range .History}}<li>{{.RequestType}}: {{.Prompt}} ({{.TokensUsed}} tokens)</li>
{{end}}</ul>
{{end}}</body>
</html>
`))

func renderMarkdown(content string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(content), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(content) + "</p>")
	}
	return template.HTML(buf.String())
}

// AIStudio writes the session as JSON or as a standalone HTML page.
func AIStudio(w io.Writer, s AIStudioSession, f Format, now time.Time) error {
	doc := aiStudioDocument{AIStudioSession: s, ExportedAt: now.UTC()}
	if doc.Results == nil {
		doc.Results = []AIResult{}
	}
	if doc.History == nil {
		doc.History = []models.AIRequest{}
	}

	switch f {
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatHTML:
		if err := aiStudioTmpl.Execute(w, doc); err != nil {
			return fmt.Errorf("failed to render export: %w", err)
		}
		return nil
	}
	return fmt.Errorf("ai studio export does not support %q", f)
}
