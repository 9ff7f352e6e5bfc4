// Package filter computes the visible subset of a board's nodes from the
// active search term, status filter and tag filters.
package filter

import (
	"strings"

	"github.com/flowweek/flowweek/client/model"
)

// Status is a status-filter value. StatusAll matches every node; the
// remaining values match only task nodes with that effective status.
type Status string

const (
	StatusAll        Status = "all"
	StatusTodo       Status = Status(model.TaskStatusTodo)
	StatusInProgress Status = Status(model.TaskStatusInProgress)
	StatusDone       Status = Status(model.TaskStatusDone)
)

// Visible returns the nodes matching all three predicates: search term,
// status filter and tag filters. Input order is preserved.
func Visible(nodes []model.Node, term string, status Status, tags []string) []model.Node {
	term = strings.ToLower(strings.TrimSpace(term))
	active := normalizeTags(tags)

	out := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		if matchesTerm(n, term) && matchesStatus(n, status) && matchesTags(n, active) {
			out = append(out, n)
		}
	}
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// matchesTerm reports whether term is a substring of the node's title,
// content or any tag. The empty term matches everything.
func matchesTerm(n model.Node, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(n.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(n.Content), term) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// matchesStatus applies the status filter. Non-task nodes never match a
// specific status, whatever stray status value they might carry.
func matchesStatus(n model.Node, status Status) bool {
	if status == StatusAll || status == "" {
		return true
	}
	if n.Type != model.NodeTypeTask {
		return false
	}
	return Status(n.EffectiveStatus()) == status
}

// matchesTags requires every active tag filter to be present among the
// node's tags, case-insensitively.
func matchesTags(n model.Node, active []string) bool {
	for _, want := range active {
		found := false
		for _, tag := range n.Tags {
			if strings.ToLower(tag) == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
