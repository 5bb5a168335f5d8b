package resources

import (
	"encoding/json"

	"todoistmcp/internal/failure"
	"todoistmcp/internal/service"
)

// Node is a project with its sub-projects.
type Node struct {
	Project  service.Project
	Children []*Node
}

// MarshalJSON renders the project fields with a children array. Leaves have
// no children key at all.
func (n *Node) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(n.Project)
	if err != nil {
		return nil, err
	}
	if len(n.Children) == 0 {
		return data, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	children, err := json.Marshal(n.Children)
	if err != nil {
		return nil, err
	}
	fields["children"] = children
	return json.Marshal(fields)
}

// childIndex groups projects by parent id, keeping provider order.
func childIndex(projects []service.Project) map[string][]service.Project {
	index := make(map[string][]service.Project)
	for _, p := range projects {
		if p.ParentID != "" {
			index[p.ParentID] = append(index[p.ParentID], p)
		}
	}
	return index
}

// BuildTree assembles the subtree rooted at rootID from the full project
// list, depth first. A project reached twice means the hierarchy has a cycle.
func BuildTree(projects []service.Project, rootID string) (*Node, error) {
	var root *service.Project
	for i := range projects {
		if projects[i].ID == rootID {
			root = &projects[i]
			break
		}
	}
	if root == nil {
		return nil, failure.New(failure.NotFound, "project %s not found", rootID)
	}

	children := childIndex(projects)
	visited := make(map[string]bool)

	var build func(p service.Project) (*Node, error)
	build = func(p service.Project) (*Node, error) {
		if visited[p.ID] {
			return nil, failure.New(failure.GatewayFailure, "project hierarchy contains a cycle at %s", p.ID)
		}
		visited[p.ID] = true
		node := &Node{Project: p}
		for _, child := range children[p.ID] {
			sub, err := build(child)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, sub)
		}
		return node, nil
	}
	return build(*root)
}
