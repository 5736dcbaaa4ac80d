package survey

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// OptionKind tags the variant held by an OptionSet.
type OptionKind string

const (
	KindOpen       OptionKind = "open"
	KindEnumerated OptionKind = "enumerated"
	KindRange      OptionKind = "range"
	KindLabeled    OptionKind = "labeled"
)

// OptionSet describes which answers a question accepts. Build one with
// Enumerated, Range, Labeled or Open; the zero value is Open.
type OptionSet struct {
	Kind    OptionKind        `json:"kind"`
	Choices []string          `json:"choices,omitempty"`
	Min     int               `json:"min,omitempty"`
	Max     int               `json:"max,omitempty"`
	Labels  map[string]string `json:"labels,omitempty"`
}

// Enumerated is a closed list of canonical option strings.
func Enumerated(choices ...string) OptionSet {
	return OptionSet{Kind: KindEnumerated, Choices: append([]string(nil), choices...)}
}

// Range accepts any whole number in [min, max].
func Range(min, max int) OptionSet {
	return OptionSet{Kind: KindRange, Min: min, Max: max}
}

// Labeled is a numeric range where some points carry a descriptive label,
// e.g. 1 = "Not satisfied at all", 5 = "Very satisfied".
func Labeled(min, max int, labels map[string]string) OptionSet {
	copied := make(map[string]string, len(labels))
	for k, v := range labels {
		copied[k] = v
	}
	return OptionSet{Kind: KindLabeled, Min: min, Max: max, Labels: copied}
}

// Open accepts any non-empty response.
func Open() OptionSet {
	return OptionSet{Kind: KindOpen}
}

func (o OptionSet) kind() OptionKind {
	if o.Kind == "" {
		return KindOpen
	}
	return o.Kind
}

// Describe renders the option set for inclusion in oracle prompts and
// re-prompts.
func (o OptionSet) Describe() string {
	switch o.kind() {
	case KindEnumerated:
		return strings.Join(o.Choices, ", ")
	case KindRange:
		return fmt.Sprintf("any whole number from %d to %d", o.Min, o.Max)
	case KindLabeled:
		keys := o.labelKeys()
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s (%s)", k, o.Labels[k]))
		}
		return fmt.Sprintf("any whole number from %d to %d, where %s", o.Min, o.Max, strings.Join(parts, ", "))
	default:
		return "Any response"
	}
}

// Canonical maps an oracle reply to the catalog's canonical form. It reports
// false when the reply does not name a valid option.
func (o OptionSet) Canonical(reply string, multiSelect bool) (string, bool) {
	cleaned := cleanReply(reply)
	if cleaned == "" {
		return "", false
	}

	switch o.kind() {
	case KindEnumerated:
		if match, ok := o.matchChoice(cleaned); ok {
			return match, true
		}
		if !multiSelect {
			return "", false
		}
		parts := strings.FieldsFunc(cleaned, func(r rune) bool { return r == ',' || r == ';' })
		seen := make(map[string]struct{}, len(parts))
		matched := make([]string, 0, len(parts))
		for _, part := range parts {
			match, ok := o.matchChoice(cleanReply(part))
			if !ok {
				return "", false
			}
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			matched = append(matched, match)
		}
		if len(matched) == 0 {
			return "", false
		}
		return strings.Join(matched, ", "), true
	case KindRange:
		return o.matchNumber(cleaned)
	case KindLabeled:
		if n, ok := o.matchNumber(cleaned); ok {
			return n, true
		}
		for key, label := range o.Labels {
			if strings.EqualFold(label, cleaned) {
				return key, true
			}
		}
		return "", false
	default:
		return cleaned, true
	}
}

func (o OptionSet) matchChoice(reply string) (string, bool) {
	for _, choice := range o.Choices {
		if strings.EqualFold(choice, reply) {
			return choice, true
		}
	}
	return "", false
}

func (o OptionSet) matchNumber(reply string) (string, bool) {
	n, err := strconv.Atoi(reply)
	if err != nil || n < o.Min || n > o.Max {
		return "", false
	}
	return strconv.Itoa(n), true
}

func (o OptionSet) labelKeys() []string {
	keys := make([]string, 0, len(o.Labels))
	for k := range o.Labels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}

// cleanReply strips the decoration models like to add around a bare answer.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	s = strings.TrimSuffix(s, ".")
	return strings.TrimSpace(s)
}
