package models

import (
	"encoding/json"
	"strings"
)

// AI request types understood by POST /ai/generate
const (
	AIRequestCaption       = "caption"
	AIRequestHashtag       = "hashtag"
	AIRequestWorkoutPlan   = "workout_plan"
	AIRequestGenerateRisks = "generate_risks"
	AIRequestGenerateTasks = "generate_tasks"
	AIRequestContent       = "content"

	DefaultAIModel = "gpt-4"
)

var aiRequestTypes = map[string]bool{
	AIRequestCaption:       true,
	AIRequestHashtag:       true,
	AIRequestWorkoutPlan:   true,
	AIRequestGenerateRisks: true,
	AIRequestGenerateTasks: true,
	AIRequestContent:       true,
}

// AIRequest is one entry of the generation history
type AIRequest struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	RequestType string          `json:"request_type"`
	Prompt      string          `json:"prompt"`
	Response    json.RawMessage `json:"response,omitempty"`
	TokensUsed  int             `json:"tokens_used"`
	CreatedAt   Timestamp       `json:"created_at"`
}

type AIGenerateRequest struct {
	Prompt      string         `json:"prompt"`
	RequestType string         `json:"request_type"`
	Model       string         `json:"model,omitempty"`
	Context     map[string]any `json:"context,omitempty"`
}

func (r *AIGenerateRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return required("prompt")
	}
	if r.RequestType == "" {
		r.RequestType = AIRequestContent
	}
	r.RequestType = normalizeEnum(r.RequestType)
	if !aiRequestTypes[r.RequestType] {
		return invalid("request_type", r.RequestType)
	}
	if r.Model == "" {
		r.Model = DefaultAIModel
	}
	return nil
}

type AIGenerateResponse struct {
	Success     bool             `json:"success"`
	Data        []map[string]any `json:"data"`
	TokensUsed  int              `json:"tokens_used"`
	RequestType string           `json:"request_type"`
}

// Content joins the generated items into display text. Items carrying a
// "content" string are used verbatim, anything else is shown as JSON.
func (r *AIGenerateResponse) Content() string {
	return joinContent(r.Data)
}

// Content renders the stored {"items": [...]} response the same way.
func (r *AIRequest) Content() string {
	var stored struct {
		Items []map[string]any `json:"items"`
	}
	if len(r.Response) == 0 || json.Unmarshal(r.Response, &stored) != nil {
		return ""
	}
	return joinContent(stored.Items)
}

func joinContent(items []map[string]any) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item["content"].(string); ok && s != "" {
			parts = append(parts, s)
			continue
		}
		b, err := json.Marshal(item)
		if err != nil {
			continue
		}
		parts = append(parts, string(b))
	}
	return strings.Join(parts, "\n\n")
}
