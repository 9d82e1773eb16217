package model

import (
	"errors"
	"reflect"
	"testing"

	"cv-builder/internal/apperr"
)

func TestDescriptionLinesStripsMarkersAndBlanks(t *testing.T) {
	t.Parallel()

	got := DescriptionLines("- Built X\n- Mentored Y\n")
	want := []string{"Built X", "Mentored Y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDescriptionLinesHandlesEscapedNewlines(t *testing.T) {
	t.Parallel()

	got := DescriptionLines(Placeholder().Experience[0].Description)
	want := []string{"Building cool stuff with React and Node.js.", "Mentoring junior developers."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPlaceholderHasOneEntryPerCollection(t *testing.T) {
	t.Parallel()

	p := Placeholder()
	if p.PersonalInfo.Name != "John Doe" || p.PersonalInfo.JobTitle != "Software Engineer" {
		t.Fatalf("unexpected placeholder identity: %+v", p.PersonalInfo)
	}
	if len(p.Experience) != 1 || len(p.Education) != 1 || len(p.Skills) != 1 {
		t.Fatalf("expected one entry each, got %d/%d/%d", len(p.Experience), len(p.Education), len(p.Skills))
	}
	if !p.Experience[0].Current() {
		t.Fatalf("expected placeholder experience to be current")
	}
	if err := ValidateFields(p); err != nil {
		t.Fatalf("placeholder should satisfy field constraints: %v", err)
	}
	if err := ValidateDocument(p); err != nil {
		t.Fatalf("placeholder should satisfy the schema: %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := Placeholder()
	cp := orig.Clone()
	cp.Experience[0].Company = "Other"
	cp.Skills = append(cp.Skills, Skill{ID: "2", Name: "Go"})

	if orig.Experience[0].Company != "Tech Corp" {
		t.Fatalf("clone shares experience storage")
	}
	if len(orig.Skills) != 1 {
		t.Fatalf("clone shares skills storage")
	}
}

func TestValidateFieldsReportsEveryFailure(t *testing.T) {
	t.Parallel()

	r := Placeholder()
	r.PersonalInfo.Email = "not-an-email"
	r.Summary = " "
	r.Skills[0].Name = ""

	err := ValidateFields(r)
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	paths := map[string]bool{}
	for _, f := range ve.Fields {
		paths[f.Path] = true
	}
	for _, p := range []string{"personalInfo.email", "summary", "skills[0].name"} {
		if !paths[p] {
			t.Fatalf("expected failure for %s, got %+v", p, ve.Fields)
		}
	}
}

func TestOptionalFieldsMayBeEmpty(t *testing.T) {
	t.Parallel()

	r := Placeholder()
	r.PersonalInfo.Phone = ""
	r.PersonalInfo.Website = ""
	r.Experience[0].Location = ""
	if err := ValidateFields(r); err != nil {
		t.Fatalf("expected optional fields to be accepted empty: %v", err)
	}
}

func TestValidateDocumentAcceptsDrafts(t *testing.T) {
	t.Parallel()

	r := Placeholder()
	r.PersonalInfo.Name = ""
	r.PersonalInfo.Email = "draft"
	if err := ValidateDocument(r); err != nil {
		t.Fatalf("expected draft to pass shape validation: %v", err)
	}
}

func TestValidateJSONRejectsMissingSections(t *testing.T) {
	t.Parallel()

	if err := ValidateJSON([]byte(`{"personalInfo":{"name":"a","jobTitle":"b","email":"c"},"summary":""}`)); err == nil {
		t.Fatalf("expected missing collections to fail")
	}
}

func TestNormalizeAssignsMissingAndDuplicateIDs(t *testing.T) {
	t.Parallel()

	r := &Resume{Skills: []Skill{{ID: "a", Name: "Go"}, {ID: "a", Name: "SQL"}, {Name: "Rust"}}}
	r.Normalize()

	if r.Skills[0].ID != "a" {
		t.Fatalf("expected first id kept, got %s", r.Skills[0].ID)
	}
	if r.Skills[1].ID == "a" || r.Skills[1].ID == "" || r.Skills[2].ID == "" {
		t.Fatalf("expected fresh ids, got %+v", r.Skills)
	}
	if r.Experience == nil || r.Education == nil {
		t.Fatalf("expected empty collections to be allocated")
	}
}

func TestFieldCheckValue(t *testing.T) {
	t.Parallel()

	f, ok := PersonalInfoFields.Find("email")
	if !ok {
		t.Fatalf("email field missing")
	}
	if _, bad := f.CheckValue("jane@example.com"); bad {
		t.Fatalf("expected valid email to pass")
	}
	if msg, bad := f.CheckValue("jane"); !bad || msg != "Invalid email" {
		t.Fatalf("expected Invalid email, got %q %v", msg, bad)
	}
}

func TestNormalizeKeepsIDsSharedAcrossLists(t *testing.T) {
	t.Parallel()

	r := Placeholder()
	r.Normalize()
	if r.Experience[0].ID != "1" || r.Education[0].ID != "1" || r.Skills[0].ID != "1" {
		t.Fatalf("expected per-list ids untouched, got %s/%s/%s", r.Experience[0].ID, r.Education[0].ID, r.Skills[0].ID)
	}
}
