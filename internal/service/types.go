package service

import (
	"time"
)

// Project is a container of tasks. Projects form a forest through ParentID.
type Project struct {
	ID       string
	Name     string
	Color    string
	ParentID string // empty for root projects

	// Extra holds provider fields this package does not model.
	Extra map[string]any
}

type projectJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	ParentID string `json:"parentId,omitempty"`
}

var projectKeys = []string{"id", "name", "color", "parentId"}

// IsRoot reports whether the project has no parent.
func (p Project) IsRoot() bool {
	return p.ParentID == ""
}

// MarshalJSON implements json.Marshaler.
func (p Project) MarshalJSON() ([]byte, error) {
	return marshalRecord(projectJSON{
		ID:       p.ID,
		Name:     p.Name,
		Color:    p.Color,
		ParentID: p.ParentID,
	}, p.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Project) UnmarshalJSON(data []byte) error {
	var known projectJSON
	extra, err := unmarshalRecord(data, &known, projectKeys...)
	if err != nil {
		return err
	}
	*p = Project{
		ID:       known.ID,
		Name:     known.Name,
		Color:    known.Color,
		ParentID: known.ParentID,
		Extra:    extra,
	}
	return nil
}

// Due is the due-date block of a task.
type Due struct {
	Date        string `json:"date"`
	String      string `json:"string,omitempty"`
	IsRecurring bool   `json:"isRecurring"`
	Datetime    string `json:"datetime,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

// Task is a live task. Priority is 1 (normal) to 4 (urgent); 0 means unset.
type Task struct {
	ID          string
	Content     string
	Description string
	ProjectID   string
	SectionID   string
	ParentID    string
	Priority    int
	Due         *Due
	Labels      []string
	Checked     bool

	Extra map[string]any
}

type taskJSON struct {
	ID          string   `json:"id"`
	Content     string   `json:"content"`
	Description string   `json:"description,omitempty"`
	ProjectID   string   `json:"projectId,omitempty"`
	SectionID   string   `json:"sectionId,omitempty"`
	ParentID    string   `json:"parentId,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	Due         *Due     `json:"due,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Checked     bool     `json:"checked"`
}

var taskKeys = []string{"id", "content", "description", "projectId", "sectionId", "parentId", "priority", "due", "labels", "checked"}

// MarshalJSON implements json.Marshaler.
func (t Task) MarshalJSON() ([]byte, error) {
	return marshalRecord(taskJSON{
		ID:          t.ID,
		Content:     t.Content,
		Description: t.Description,
		ProjectID:   t.ProjectID,
		SectionID:   t.SectionID,
		ParentID:    t.ParentID,
		Priority:    t.Priority,
		Due:         t.Due,
		Labels:      t.Labels,
		Checked:     t.Checked,
	}, t.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Task) UnmarshalJSON(data []byte) error {
	var known taskJSON
	extra, err := unmarshalRecord(data, &known, taskKeys...)
	if err != nil {
		return err
	}
	*t = Task{
		ID:          known.ID,
		Content:     known.Content,
		Description: known.Description,
		ProjectID:   known.ProjectID,
		SectionID:   known.SectionID,
		ParentID:    known.ParentID,
		Priority:    known.Priority,
		Due:         known.Due,
		Labels:      known.Labels,
		Checked:     known.Checked,
		Extra:       extra,
	}
	return nil
}

// CompletedTask is a read-only projection of a task at completion time.
// Provider fields that are not modeled survive in Extra.
type CompletedTask struct {
	ID          string
	TaskID      string
	Content     string
	CompletedAt string
	ProjectID   string
	SectionID   string
	UserID      string
	Priority    int
	Labels      []string

	Extra map[string]any
}

type completedTaskJSON struct {
	ID          string   `json:"id"`
	TaskID      string   `json:"taskId,omitempty"`
	Content     string   `json:"content"`
	CompletedAt string   `json:"completedAt"`
	ProjectID   string   `json:"projectId,omitempty"`
	SectionID   string   `json:"sectionId,omitempty"`
	UserID      string   `json:"userId,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

var completedTaskKeys = []string{"id", "taskId", "content", "completedAt", "projectId", "sectionId", "userId", "priority", "labels"}

// CompletedTime parses CompletedAt.
func (c CompletedTask) CompletedTime() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, c.CompletedAt)
}

// MarshalJSON implements json.Marshaler.
func (c CompletedTask) MarshalJSON() ([]byte, error) {
	return marshalRecord(completedTaskJSON{
		ID:          c.ID,
		TaskID:      c.TaskID,
		Content:     c.Content,
		CompletedAt: c.CompletedAt,
		ProjectID:   c.ProjectID,
		SectionID:   c.SectionID,
		UserID:      c.UserID,
		Priority:    c.Priority,
		Labels:      c.Labels,
	}, c.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *CompletedTask) UnmarshalJSON(data []byte) error {
	var known completedTaskJSON
	extra, err := unmarshalRecord(data, &known, completedTaskKeys...)
	if err != nil {
		return err
	}
	*c = CompletedTask{
		ID:          known.ID,
		TaskID:      known.TaskID,
		Content:     known.Content,
		CompletedAt: known.CompletedAt,
		ProjectID:   known.ProjectID,
		SectionID:   known.SectionID,
		UserID:      known.UserID,
		Priority:    known.Priority,
		Labels:      known.Labels,
		Extra:       extra,
	}
	if c.ID == "" {
		c.ID = c.TaskID
	}
	return nil
}
