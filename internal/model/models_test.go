package model_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"jobmate/workday-discovery/internal/model"
)

func TestEmploymentType_UnmarshalVariants(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want model.EmploymentType
	}{
		{"bare string", `"FULL_TIME"`, model.EmploymentType{"FULL_TIME"}},
		{"comma string", `"FULL_TIME, PART_TIME"`, model.EmploymentType{"FULL_TIME", "PART_TIME"}},
		{"array", `["FULL_TIME","CONTRACT"]`, model.EmploymentType{"FULL_TIME", "CONTRACT"}},
		{"object with type", `{"type":"FULL_TIME"}`, model.EmploymentType{"FULL_TIME"}},
		{"empty string", `""`, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var got model.EmploymentType
			if err := json.Unmarshal([]byte(c.in), &got); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", c.in, err)
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("Unmarshal(%s) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestParseEmploymentType(t *testing.T) {
	if got := model.ParseEmploymentType(`["A","B"]`); !reflect.DeepEqual(got, model.EmploymentType{"A", "B"}) {
		t.Errorf("JSON array input = %v, want [A B]", got)
	}
	if got := model.ParseEmploymentType("A, B"); !reflect.DeepEqual(got, model.EmploymentType{"A", "B"}) {
		t.Errorf("comma input = %v, want [A B]", got)
	}
	if got := model.ParseEmploymentType("  FULL_TIME  "); !reflect.DeepEqual(got, model.EmploymentType{"FULL_TIME"}) {
		t.Errorf("single input = %v, want [FULL_TIME]", got)
	}
	if got := model.ParseEmploymentType(""); got != nil {
		t.Errorf("empty input = %v, want nil", got)
	}
}

func TestJobDetails_Empty(t *testing.T) {
	if !(model.JobDetails{Source: model.SourceNone}).Empty() {
		t.Error("zero record should be empty")
	}
	if (model.JobDetails{Title: "x"}).Empty() {
		t.Error("record with a title should not be empty")
	}
}
