package service

// The Fields methods below return the wire form of a request using the
// provider's camelCase names. Only supplied values appear in the map.

// CreateProjectParams describes a new project. Name is required.
type CreateProjectParams struct {
	Name       string
	Color      string
	ParentID   string
	ViewStyle  string
	IsFavorite *bool
}

// Fields returns the supplied fields.
func (p CreateProjectParams) Fields() map[string]any {
	fields := map[string]any{"name": p.Name}
	setString(fields, "color", p.Color)
	setString(fields, "parentId", p.ParentID)
	setString(fields, "viewStyle", p.ViewStyle)
	if p.IsFavorite != nil {
		fields["isFavorite"] = *p.IsFavorite
	}
	return fields
}

// ProjectPatch is a partial project update. Nil fields are left untouched.
type ProjectPatch struct {
	Name       *string
	Color      *string
	ViewStyle  *string
	IsFavorite *bool
}

// Fields returns the supplied fields. An empty patch yields an empty map.
func (p ProjectPatch) Fields() map[string]any {
	fields := map[string]any{}
	setStringPtr(fields, "name", p.Name)
	setStringPtr(fields, "color", p.Color)
	setStringPtr(fields, "viewStyle", p.ViewStyle)
	if p.IsFavorite != nil {
		fields["isFavorite"] = *p.IsFavorite
	}
	return fields
}

// IsEmpty reports whether the patch carries no fields.
func (p ProjectPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// TodayFilter is the provider filter for tasks due today or overdue.
const TodayFilter = "today|overdue"

// TaskFilter selects which open tasks ListTasks returns. A Query takes
// precedence over ProjectID.
type TaskFilter struct {
	ProjectID string
	Query     string
}

// CreateTaskParams describes a new task. Content is required.
type CreateTaskParams struct {
	Content     string
	Description string
	ProjectID   string
	SectionID   string
	ParentID    string
	Priority    int
	DueString   string
	DueDate     string
	Labels      []string
}

// Fields returns the supplied fields.
func (p CreateTaskParams) Fields() map[string]any {
	fields := map[string]any{"content": p.Content}
	setString(fields, "description", p.Description)
	setString(fields, "projectId", p.ProjectID)
	setString(fields, "sectionId", p.SectionID)
	setString(fields, "parentId", p.ParentID)
	if p.Priority != 0 {
		fields["priority"] = p.Priority
	}
	setString(fields, "dueString", p.DueString)
	setString(fields, "dueDate", p.DueDate)
	if p.Labels != nil {
		fields["labels"] = p.Labels
	}
	return fields
}

// TaskPatch is a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Content     *string
	Description *string
	Priority    *int
	DueString   *string
	DueDate     *string
	Labels      []string
}

// Fields returns the supplied fields. An empty patch yields an empty map.
func (p TaskPatch) Fields() map[string]any {
	fields := map[string]any{}
	setStringPtr(fields, "content", p.Content)
	setStringPtr(fields, "description", p.Description)
	if p.Priority != nil {
		fields["priority"] = *p.Priority
	}
	setStringPtr(fields, "dueString", p.DueString)
	setStringPtr(fields, "dueDate", p.DueDate)
	if p.Labels != nil {
		fields["labels"] = p.Labels
	}
	return fields
}

// IsEmpty reports whether the patch carries no fields.
func (p TaskPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// MoveParams names the destination of a move. Every non-empty field is
// forwarded; the provider decides precedence when more than one is set.
type MoveParams struct {
	ProjectID string
	SectionID string
	ParentID  string
}

// Fields returns the supplied destinations.
func (p MoveParams) Fields() map[string]any {
	fields := map[string]any{}
	setString(fields, "projectId", p.ProjectID)
	setString(fields, "sectionId", p.SectionID)
	setString(fields, "parentId", p.ParentID)
	return fields
}

// CompletedQuery is a window over the completion history.
// Since and Until are ISO 8601 timestamps passed through verbatim.
type CompletedQuery struct {
	Since     string
	Until     string
	ProjectID string
	Limit     int
}

func setString(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

func setStringPtr(fields map[string]any, key string, value *string) {
	if value != nil {
		fields[key] = *value
	}
}
