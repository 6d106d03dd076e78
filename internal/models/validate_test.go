package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskCreate_ValidateDefaults(t *testing.T) {
	in := TaskCreate{Title: "Plan macro cycle"}
	require.NoError(t, in.Validate())
	assert.Equal(t, TaskStatusTodo, in.Status)
	assert.Equal(t, TaskPriorityMedium, in.Priority)
}

func TestTaskCreate_ValidateMissingTitle(t *testing.T) {
	in := TaskCreate{}
	err := in.Validate()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Field)
}

func TestTaskCreate_ValidateRejectsUnknownStatus(t *testing.T) {
	in := TaskCreate{Title: "x", Status: "archived"}
	assert.Error(t, in.Validate())
}

func TestValidateNormalizesEnums(t *testing.T) {
	task := TaskCreate{Title: "x", Status: "DONE", Priority: "High"}
	require.NoError(t, task.Validate())
	assert.Equal(t, TaskStatusDone, task.Status)
	assert.Equal(t, TaskPriorityHigh, task.Priority)

	status := TaskStatus("In Progress")
	update := TaskUpdate{Status: &status}
	require.NoError(t, update.Validate())
	assert.Equal(t, TaskStatusInProgress, *update.Status)

	risk := RiskCreate{Title: "x", Severity: "CRITICAL", Status: "Mitigated"}
	require.NoError(t, risk.Validate())
	assert.Equal(t, LevelCritical, risk.Severity)
	assert.Equal(t, RiskStatusMitigated, risk.Status)

	project := ProjectCreate{Name: "x", Status: "on-hold"}
	require.NoError(t, project.Validate())
	assert.Equal(t, ProjectStatusOnHold, project.Status)

	projectStatus := ProjectStatus("Cancelled")
	require.NoError(t, (&ProjectUpdate{Status: &projectStatus}).Validate())
	assert.Equal(t, ProjectStatusCancelled, projectStatus)
}

func TestRiskCreate_ValidateRejectsCriticalProbability(t *testing.T) {
	in := RiskCreate{Title: "Overtraining", Probability: LevelCritical}
	err := in.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "probability")
}

func TestProjectUpdate_ValidateProgressRange(t *testing.T) {
	over := 101
	assert.Error(t, (&ProjectUpdate{Progress: &over}).Validate())

	ok := 100
	assert.NoError(t, (&ProjectUpdate{Progress: &ok}).Validate())
}

func TestAIGenerateRequest_ValidateDefaults(t *testing.T) {
	in := AIGenerateRequest{Prompt: "write a caption", RequestType: "WORKOUT-PLAN"}
	require.NoError(t, in.Validate())
	assert.Equal(t, AIRequestWorkoutPlan, in.RequestType)
	assert.Equal(t, DefaultAIModel, in.Model)

	blank := AIGenerateRequest{Prompt: "   "}
	assert.Error(t, blank.Validate())
}

func TestAIGenerateResponse_Content(t *testing.T) {
	resp := AIGenerateResponse{Data: []map[string]any{
		{"content": "Leg day"},
		{"title": "Rest"},
	}}
	assert.Equal(t, "Leg day\n\n{\"title\":\"Rest\"}", resp.Content())
}

func TestAIRequest_Content(t *testing.T) {
	req := AIRequest{Response: json.RawMessage(`{"items":[{"content":"#GymLife"}]}`)}
	assert.Equal(t, "#GymLife", req.Content())

	empty := AIRequest{}
	assert.Empty(t, empty.Content())
}
