package models

import (
	"encoding/json"
	"strings"
)

// normalizeEnum folds the casing and separator variants the backend has emitted
// over time ("DONE", "in-progress", "In Progress") into lowercase snake case.
func normalizeEnum(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func unmarshalEnum(data []byte) (string, error) {
	if string(data) == "null" {
		return "", nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", err
	}
	return normalizeEnum(raw), nil
}

// TaskStatus is the Kanban column of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// TaskStatuses lists the recognized statuses in board order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusBlocked}

// ParseTaskStatus normalizes raw. Unrecognized values are kept lower-cased.
func ParseTaskStatus(raw string) TaskStatus { return TaskStatus(normalizeEnum(raw)) }

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusBlocked:
		return true
	}
	return false
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data)
	*s = TaskStatus(v)
	return err
}

// TaskPriority orders work inside a column
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

func ParseTaskPriority(raw string) TaskPriority { return TaskPriority(normalizeEnum(raw)) }

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

func (p *TaskPriority) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data)
	*p = TaskPriority(v)
	return err
}

// Level is the shared low..critical scale used by risk severity, probability and impact.
// Probability stops at high.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Levels lists severity buckets in ascending order.
var Levels = []Level{LevelLow, LevelMedium, LevelHigh, LevelCritical}

func ParseLevel(raw string) Level { return Level(normalizeEnum(raw)) }

func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh, LevelCritical:
		return true
	}
	return false
}

// ValidProbability reports whether l is usable as a risk probability.
func (l Level) ValidProbability() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}

func (l *Level) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data)
	*l = Level(v)
	return err
}

// RiskStatus tracks mitigation progress
type RiskStatus string

const (
	RiskStatusOpen      RiskStatus = "open"
	RiskStatusMitigated RiskStatus = "mitigated"
	RiskStatusClosed    RiskStatus = "closed"
)

func ParseRiskStatus(raw string) RiskStatus { return RiskStatus(normalizeEnum(raw)) }

func (s RiskStatus) Valid() bool {
	switch s {
	case RiskStatusOpen, RiskStatusMitigated, RiskStatusClosed:
		return true
	}
	return false
}

func (s *RiskStatus) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data)
	*s = RiskStatus(v)
	return err
}

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

func ParseProjectStatus(raw string) ProjectStatus { return ProjectStatus(normalizeEnum(raw)) }

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusOnHold, ProjectStatusCancelled:
		return true
	}
	return false
}

func (s *ProjectStatus) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data)
	*s = ProjectStatus(v)
	return err
}
