// Package survey holds the questionnaire catalog and the navigator that
// computes the next question from a canonical answer.
package survey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Question is one immutable catalog entry.
type Question struct {
	ID          int               `json:"id"`
	Text        string            `json:"text"`
	Options     OptionSet         `json:"options"`
	SkipLogic   map[string]string `json:"skip_logic,omitempty"`
	Next        string            `json:"next,omitempty"`
	MultiSelect bool              `json:"multi_select,omitempty"`
}

func (q Question) clone() Question {
	out := q
	if q.SkipLogic != nil {
		out.SkipLogic = make(map[string]string, len(q.SkipLogic))
		for k, v := range q.SkipLogic {
			out.SkipLogic[k] = v
		}
	}
	out.Options.Choices = append([]string(nil), q.Options.Choices...)
	if q.Options.Labels != nil {
		out.Options = Labeled(q.Options.Min, q.Options.Max, q.Options.Labels)
	}
	return out
}

var (
	ErrEmptyCatalog      = errors.New("survey: catalog has no questions")
	ErrDuplicateQuestion = errors.New("survey: duplicate question id")
)

// Catalog is the ordered, read-only question set. It is safe for concurrent
// use because nothing mutates it after NewCatalog returns.
type Catalog struct {
	title     string
	questions []Question
	index     map[int]int
}

// NewCatalog builds a catalog preserving the given order.
func NewCatalog(title string, questions []Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		title:     title,
		questions: make([]Question, 0, len(questions)),
		index:     make(map[int]int, len(questions)),
	}
	for _, q := range questions {
		if _, dup := c.index[q.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateQuestion, q.ID)
		}
		c.index[q.ID] = len(c.questions)
		c.questions = append(c.questions, q.clone())
	}
	return c, nil
}

// Title returns the survey title.
func (c *Catalog) Title() string {
	return c.title
}

// Len returns the number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// First returns the opening question.
func (c *Catalog) First() Question {
	return c.questions[0].clone()
}

// Lookup returns the question with the given id.
func (c *Catalog) Lookup(id int) (Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i].clone(), true
}

// NextSequential returns the id that follows id in catalog order, or false
// when id is the last entry or unknown.
func (c *Catalog) NextSequential(id int) (int, bool) {
	i, ok := c.index[id]
	if !ok || i+1 >= len(c.questions) {
		return 0, false
	}
	return c.questions[i+1].ID, true
}

// Questions returns a copy of every question in order.
func (c *Catalog) Questions() []Question {
	out := make([]Question, len(c.questions))
	for i, q := range c.questions {
		out[i] = q.clone()
	}
	return out
}

// Resolve turns a question reference such as "Q3" (or "3") into an id that
// exists in the catalog.
func (c *Catalog) Resolve(ref string) (int, bool) {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(strings.TrimPrefix(ref, "Q"), "q")
	id, err := strconv.Atoi(ref)
	if err != nil {
		return 0, false
	}
	if _, ok := c.index[id]; !ok {
		return 0, false
	}
	return id, true
}

// DanglingReferences lists skip-logic and next-question targets that do not
// resolve. The navigator treats them as the end of the survey.
func (c *Catalog) DanglingReferences() []string {
	var out []string
	for _, q := range c.questions {
		for _, answer := range sortedKeys(q.SkipLogic) {
			target := q.SkipLogic[answer]
			if _, ok := c.Resolve(target); !ok {
				out = append(out, fmt.Sprintf("Q%d skip %q -> %s", q.ID, answer, target))
			}
		}
		if q.Next != "" {
			if _, ok := c.Resolve(q.Next); !ok {
				out = append(out, fmt.Sprintf("Q%d next -> %s", q.ID, q.Next))
			}
		}
	}
	return out
}
