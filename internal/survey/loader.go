package survey

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

//go:embed catalogs/cahps_adult_medicaid.json
var defaultCatalogJSON []byte

type rawDocument struct {
	Survey struct {
		Title     string        `json:"Title"`
		Version   string        `json:"Version"`
		Language  string        `json:"Language"`
		Questions []rawQuestion `json:"Questions"`
	} `json:"Survey"`
}

type rawQuestion struct {
	QuestionID   int               `json:"QuestionID"`
	QuestionText string            `json:"QuestionText"`
	Options      json.RawMessage   `json:"Options"`
	Scale        *rawScale         `json:"Scale"`
	SkipLogic    map[string]string `json:"SkipLogic"`
	NextQuestion string            `json:"NextQuestion"`
	MultiSelect  bool              `json:"MultiSelect"`
}

type rawScale struct {
	Min int `json:"Min"`
	Max int `json:"Max"`
}

// DefaultCatalog returns the embedded CAHPS Adult Medicaid 5.1 catalog.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(bytes.NewReader(defaultCatalogJSON))
	if err != nil {
		panic(fmt.Sprintf("survey: embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalogFile reads a catalog document from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("survey: open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// LoadCatalog parses a survey document. "Options" may be a list of choices or
// a map of scale labels; "Scale" alone makes a numeric range; neither makes
// an open question.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var doc rawDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("survey: decode catalog: %w", err)
	}

	questions := make([]Question, 0, len(doc.Survey.Questions))
	for _, rq := range doc.Survey.Questions {
		options, err := rq.optionSet()
		if err != nil {
			return nil, fmt.Errorf("survey: question %d: %w", rq.QuestionID, err)
		}
		questions = append(questions, Question{
			ID:          rq.QuestionID,
			Text:        rq.QuestionText,
			Options:     options,
			SkipLogic:   rq.SkipLogic,
			Next:        rq.NextQuestion,
			MultiSelect: rq.MultiSelect,
		})
	}
	return NewCatalog(doc.Survey.Title, questions)
}

func (rq rawQuestion) optionSet() (OptionSet, error) {
	raw := bytes.TrimSpace(rq.Options)
	hasOptions := len(raw) > 0 && !bytes.Equal(raw, []byte("null"))

	if hasOptions && raw[0] == '[' {
		var choices []string
		if err := json.Unmarshal(raw, &choices); err != nil {
			return OptionSet{}, fmt.Errorf("decode options list: %w", err)
		}
		if len(choices) > 0 {
			return Enumerated(choices...), nil
		}
		hasOptions = false
	}

	if hasOptions {
		var labels map[string]string
		if err := json.Unmarshal(raw, &labels); err != nil {
			return OptionSet{}, fmt.Errorf("decode options map: %w", err)
		}
		if rq.Scale != nil {
			return Labeled(rq.Scale.Min, rq.Scale.Max, labels), nil
		}
		if min, max, ok := numericBounds(labels); ok {
			return Labeled(min, max, labels), nil
		}
		keys := make([]string, 0, len(labels))
		for k := range labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return Enumerated(keys...), nil
	}

	if rq.Scale != nil {
		if rq.Scale.Min > rq.Scale.Max {
			return OptionSet{}, fmt.Errorf("scale min %d exceeds max %d", rq.Scale.Min, rq.Scale.Max)
		}
		return Range(rq.Scale.Min, rq.Scale.Max), nil
	}
	return Open(), nil
}

func numericBounds(labels map[string]string) (int, int, bool) {
	first := true
	var min, max int
	for k := range labels {
		n, err := strconv.Atoi(k)
		if err != nil {
			return 0, 0, false
		}
		if first || n < min {
			min = n
		}
		if first || n > max {
			max = n
		}
		first = false
	}
	return min, max, !first
}
