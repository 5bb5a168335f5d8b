package resources

import (
	"strings"

	"todoistmcp/internal/failure"
)

// Scheme prefixes every resource URI.
const Scheme = "todoist://"

// Kind names a resource shape.
type Kind string

const (
	KindToday            Kind = "today"
	KindProject          Kind = "project"
	KindProjectTasks     Kind = "project_tasks"
	KindProjectStructure Kind = "project_structure"
	KindTask             Kind = "task"
)

// Address is a parsed resource URI.
type Address struct {
	Kind Kind
	ID   string
}

// URI returns the canonical URI of a.
func (a Address) URI() string {
	switch a.Kind {
	case KindToday:
		return Scheme + "today/tasks"
	case KindProject:
		return Scheme + "project/" + a.ID
	case KindProjectTasks:
		return Scheme + "project/" + a.ID + "/tasks"
	case KindProjectStructure:
		return Scheme + "project/" + a.ID + "/structure"
	case KindTask:
		return Scheme + "task/" + a.ID
	}
	return ""
}

// Parse resolves a todoist:// URI. Leading and trailing slashes of the path
// are ignored.
func Parse(uri string) (Address, error) {
	rest, ok := strings.CutPrefix(uri, Scheme)
	if !ok {
		return Address{}, failure.New(failure.UnsupportedResource, "unsupported resource URI: %s", uri)
	}
	path := strings.Trim(rest, "/")
	if path == "" {
		return Address{}, failure.New(failure.UnsupportedResource, "empty resource path: %s", uri)
	}

	segs := strings.Split(path, "/")
	for _, s := range segs {
		if s == "" {
			return Address{}, unsupportedPath(path)
		}
	}

	switch segs[0] {
	case "today":
		if len(segs) == 2 && segs[1] == "tasks" {
			return Address{Kind: KindToday}, nil
		}
	case "project":
		switch {
		case len(segs) == 2:
			return Address{Kind: KindProject, ID: segs[1]}, nil
		case len(segs) == 3 && segs[2] == "tasks":
			return Address{Kind: KindProjectTasks, ID: segs[1]}, nil
		case len(segs) == 3 && segs[2] == "structure":
			return Address{Kind: KindProjectStructure, ID: segs[1]}, nil
		}
	case "task":
		if len(segs) == 2 {
			return Address{Kind: KindTask, ID: segs[1]}, nil
		}
	default:
		return Address{}, failure.New(failure.UnsupportedResource, "unsupported resource type: %s", segs[0])
	}
	return Address{}, unsupportedPath(path)
}

func unsupportedPath(path string) error {
	return failure.New(failure.UnsupportedResource, "unsupported resource path: %s", path)
}
