package models

// Task is a unit of work on the Kanban board
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *Timestamp   `json:"due_date,omitempty"`
	Completed   bool         `json:"completed"`
	OwnerID     int64        `json:"owner_id"`
	CreatedAt   Timestamp    `json:"created_at"`
	UpdatedAt   Timestamp    `json:"updated_at"`
}

type TaskCreate struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *Timestamp   `json:"due_date,omitempty"`
}

// Validate fills the backend defaults (todo, medium) and rejects the rest.
func (t *TaskCreate) Validate() error {
	if t.Title == "" {
		return required("title")
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	t.Status = ParseTaskStatus(string(t.Status))
	t.Priority = ParseTaskPriority(string(t.Priority))
	if !t.Status.Valid() {
		return invalid("status", string(t.Status))
	}
	if !t.Priority.Valid() {
		return invalid("priority", string(t.Priority))
	}
	return nil
}

type TaskUpdate struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *Timestamp    `json:"due_date,omitempty"`
	Completed   *bool         `json:"completed,omitempty"`
}

func (t *TaskUpdate) Validate() error {
	if t.Title != nil && *t.Title == "" {
		return required("title")
	}
	if t.Status != nil {
		if *t.Status = ParseTaskStatus(string(*t.Status)); !t.Status.Valid() {
			return invalid("status", string(*t.Status))
		}
	}
	if t.Priority != nil {
		if *t.Priority = ParseTaskPriority(string(*t.Priority)); !t.Priority.Valid() {
			return invalid("priority", string(*t.Priority))
		}
	}
	return nil
}
