package models

import "fmt"

// Project groups tasks toward a due date
type Project struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	Progress    int           `json:"progress"`
	DueDate     *Timestamp    `json:"due_date,omitempty"`
	OwnerID     int64         `json:"owner_id"`
	CreatedAt   Timestamp     `json:"created_at"`
	UpdatedAt   Timestamp     `json:"updated_at"`
}

type ProjectCreate struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status,omitempty"`
	Progress    *int          `json:"progress,omitempty"`
	DueDate     *Timestamp    `json:"due_date,omitempty"`
}

func (p *ProjectCreate) Validate() error {
	if p.Name == "" {
		return required("name")
	}
	if p.Status == "" {
		p.Status = ProjectStatusActive
	}
	if p.Status = ParseProjectStatus(string(p.Status)); !p.Status.Valid() {
		return invalid("status", string(p.Status))
	}
	return validateProgress(p.Progress)
}

type ProjectUpdate struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty"`
	Progress    *int           `json:"progress,omitempty"`
	DueDate     *Timestamp     `json:"due_date,omitempty"`
}

func (p *ProjectUpdate) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return required("name")
	}
	if p.Status != nil {
		if *p.Status = ParseProjectStatus(string(*p.Status)); !p.Status.Valid() {
			return invalid("status", string(*p.Status))
		}
	}
	return validateProgress(p.Progress)
}

func validateProgress(progress *int) error {
	if progress != nil && (*progress < 0 || *progress > 100) {
		return invalid("progress", fmt.Sprint(*progress))
	}
	return nil
}
