package survey

import (
	"sort"
	"strings"
)

// TerminalReason explains why navigation produced no next question.
type TerminalReason string

const (
	// ReasonExhausted means the last question was answered.
	ReasonExhausted TerminalReason = "exhausted"
	// ReasonDanglingReference means a skip or next target does not exist.
	ReasonDanglingReference TerminalReason = "dangling_reference"
	// ReasonUnknownQuestion means the current id is not in the catalog.
	ReasonUnknownQuestion TerminalReason = "unknown_question"
)

// Transition is the navigator's decision for one answered question.
// A terminal transition always means the survey is over, never a user error.
type Transition struct {
	NextID   int
	Terminal bool
	Reason   TerminalReason
	Branched bool
}

// Navigator computes the next question from a canonical answer.
type Navigator struct {
	catalog *Catalog
}

// NewNavigator creates a navigator over catalog.
func NewNavigator(catalog *Catalog) *Navigator {
	if catalog == nil {
		panic("survey: catalog cannot be nil")
	}
	return &Navigator{catalog: catalog}
}

// Next applies skip logic first, then the question's explicit next pointer,
// then catalog order.
func (n *Navigator) Next(currentID int, answer string) Transition {
	q, ok := n.catalog.Lookup(currentID)
	if !ok {
		return Transition{Terminal: true, Reason: ReasonUnknownQuestion}
	}

	if target, ok := skipTarget(q.SkipLogic, answer); ok {
		return n.follow(target, true)
	}
	if q.Next != "" {
		return n.follow(q.Next, false)
	}

	next, ok := n.catalog.NextSequential(currentID)
	if !ok {
		return Transition{Terminal: true, Reason: ReasonExhausted}
	}
	return Transition{NextID: next}
}

// NextQuestionID is the two-value form of Next.
func (n *Navigator) NextQuestionID(currentID int, answer string) (int, bool) {
	t := n.Next(currentID, answer)
	if t.Terminal {
		return 0, false
	}
	return t.NextID, true
}

func (n *Navigator) follow(ref string, branched bool) Transition {
	id, ok := n.catalog.Resolve(ref)
	if !ok {
		return Transition{Terminal: true, Reason: ReasonDanglingReference, Branched: branched}
	}
	return Transition{NextID: id, Branched: branched}
}

func skipTarget(skip map[string]string, answer string) (string, bool) {
	if len(skip) == 0 {
		return "", false
	}
	if target, ok := skip[answer]; ok {
		return target, true
	}
	trimmed := strings.TrimSpace(answer)
	for _, key := range sortedKeys(skip) {
		if strings.EqualFold(key, trimmed) {
			return skip[key], true
		}
	}
	return "", false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
