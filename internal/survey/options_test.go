package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionSetCanonical(t *testing.T) {
	frequency := Enumerated("Never", "Sometimes", "Usually", "Always")
	visits := Enumerated("None", "1 time", "2", "3", "4", "5 to 9", "10 or more")
	challenges := Enumerated("Long wait times to get appointments", "Difficulty finding available providers", "Other (please specify)")
	satisfaction := Labeled(1, 5, map[string]string{"1": "Not satisfied at all", "5": "Very satisfied"})

	tests := []struct {
		name   string
		set    OptionSet
		multi  bool
		reply  string
		want   string
		wantOK bool
	}{
		{name: "exact choice", set: frequency, reply: "Usually", want: "Usually", wantOK: true},
		{name: "case and punctuation", set: frequency, reply: " \"usually.\" ", want: "Usually", wantOK: true},
		{name: "unknown choice", set: frequency, reply: "Often", wantOK: false},
		{name: "invalid marker", set: frequency, reply: "INVALID", wantOK: false},
		{name: "bucket option", set: visits, reply: "5 to 9", want: "5 to 9", wantOK: true},
		{name: "range inside", set: Range(0, 10), reply: "7", want: "7", wantOK: true},
		{name: "range outside", set: Range(0, 10), reply: "11", wantOK: false},
		{name: "range not a number", set: Range(0, 10), reply: "seven", wantOK: false},
		{name: "labeled number", set: satisfaction, reply: "3", want: "3", wantOK: true},
		{name: "labeled label", set: satisfaction, reply: "very satisfied", want: "5", wantOK: true},
		{name: "open text", set: Open(), reply: "  I prefer mornings ", want: "I prefer mornings", wantOK: true},
		{name: "open empty", set: Open(), reply: "   ", wantOK: false},
		{name: "zero value is open", set: OptionSet{}, reply: "ok", want: "ok", wantOK: true},
		{name: "multi select list", set: challenges, multi: true,
			reply: "Long wait times to get appointments, other (please specify)",
			want:  "Long wait times to get appointments, Other (please specify)", wantOK: true},
		{name: "multi select duplicate", set: challenges, multi: true,
			reply: "Other (please specify); Other (please specify)", want: "Other (please specify)", wantOK: true},
		{name: "multi select bad element", set: challenges, multi: true,
			reply: "Other (please specify), parking", wantOK: false},
		{name: "list rejected without multi", set: challenges,
			reply: "Other (please specify), Long wait times to get appointments", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.set.Canonical(tt.reply, tt.multi)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestOptionSetDescribe(t *testing.T) {
	assert.Equal(t, "Yes, No", Enumerated("Yes", "No").Describe())
	assert.Equal(t, "any whole number from 0 to 10", Range(0, 10).Describe())
	assert.Equal(t, "Any response", Open().Describe())
	assert.Equal(t,
		"any whole number from 1 to 5, where 1 (Not satisfied at all), 5 (Very satisfied)",
		Labeled(1, 5, map[string]string{"5": "Very satisfied", "1": "Not satisfied at all"}).Describe())
}
