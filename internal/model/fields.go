package model

import (
	"fmt"
	"strings"

	"cv-builder/internal/apperr"

	"github.com/xeipuuv/gojsonschema"
)

// Field describes one editable string field of T: its JSON name, whether it
// is required and an optional format checked with the gojsonschema format
// checkers.
type Field[T any] struct {
	Name     string
	Required bool
	Format   string
	Message  string
	Ref      func(*T) *string
}

// Fields is a static constraint set for one entity.
type Fields[T any] []Field[T]

// Find returns the field with the given JSON name.
func (fs Fields[T]) Find(name string) (Field[T], bool) {
	for _, f := range fs {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// Check validates every field of v. prefix is prepended to reported paths.
func (fs Fields[T]) Check(v *T, prefix string) []apperr.FieldError {
	var out []apperr.FieldError
	for _, f := range fs {
		if fe, bad := f.check(v); bad {
			out = append(out, apperr.FieldError{Path: prefix + f.Name, Message: fe})
		}
	}
	return out
}

func (f Field[T]) check(v *T) (string, bool) {
	val := *f.Ref(v)
	if f.Format != "" {
		if (f.Required || val != "") && !gojsonschema.FormatCheckers.IsFormat(f.Format, val) {
			return f.Message, true
		}
		return "", false
	}
	if f.Required && strings.TrimSpace(val) == "" {
		return f.Message, true
	}
	return "", false
}

// CheckValue validates a candidate value for a single field without
// touching any document.
func (f Field[T]) CheckValue(value string) (string, bool) {
	var zero T
	*f.Ref(&zero) = value
	return f.check(&zero)
}

var PersonalInfoFields = Fields[PersonalInfo]{
	{Name: "name", Required: true, Message: "Name is required", Ref: func(p *PersonalInfo) *string { return &p.Name }},
	{Name: "jobTitle", Required: true, Message: "Job title is required", Ref: func(p *PersonalInfo) *string { return &p.JobTitle }},
	{Name: "email", Required: true, Format: "email", Message: "Invalid email", Ref: func(p *PersonalInfo) *string { return &p.Email }},
	{Name: "phone", Ref: func(p *PersonalInfo) *string { return &p.Phone }},
	{Name: "address", Ref: func(p *PersonalInfo) *string { return &p.Address }},
	{Name: "linkedin", Ref: func(p *PersonalInfo) *string { return &p.LinkedIn }},
	{Name: "website", Ref: func(p *PersonalInfo) *string { return &p.Website }},
	{Name: "photoUrl", Ref: func(p *PersonalInfo) *string { return &p.PhotoURL }},
}

var ExperienceFields = Fields[Experience]{
	{Name: "jobTitle", Required: true, Message: "Job title is required", Ref: func(e *Experience) *string { return &e.JobTitle }},
	{Name: "company", Required: true, Message: "Company is required", Ref: func(e *Experience) *string { return &e.Company }},
	{Name: "location", Ref: func(e *Experience) *string { return &e.Location }},
	{Name: "startDate", Required: true, Message: "Start date is required", Ref: func(e *Experience) *string { return &e.StartDate }},
	{Name: "endDate", Required: true, Message: "End date is required", Ref: func(e *Experience) *string { return &e.EndDate }},
	{Name: "description", Required: true, Message: "Description is required", Ref: func(e *Experience) *string { return &e.Description }},
}

var EducationFields = Fields[Education]{
	{Name: "degree", Required: true, Message: "Degree is required", Ref: func(e *Education) *string { return &e.Degree }},
	{Name: "institution", Required: true, Message: "Institution is required", Ref: func(e *Education) *string { return &e.Institution }},
	{Name: "location", Ref: func(e *Education) *string { return &e.Location }},
	{Name: "graduationDate", Required: true, Message: "Graduation date is required", Ref: func(e *Education) *string { return &e.GraduationDate }},
}

var SkillFields = Fields[Skill]{
	{Name: "name", Required: true, Message: "Skill name is required", Ref: func(s *Skill) *string { return &s.Name }},
}

// ValidateFields checks every field constraint of the document and returns
// a *apperr.ValidationError listing all failures, or nil.
func ValidateFields(r *Resume) error {
	var errs []apperr.FieldError
	errs = append(errs, PersonalInfoFields.Check(&r.PersonalInfo, "personalInfo.")...)
	if strings.TrimSpace(r.Summary) == "" {
		errs = append(errs, apperr.FieldError{Path: "summary", Message: "Summary is required"})
	}
	for i := range r.Experience {
		errs = append(errs, ExperienceFields.Check(&r.Experience[i], fmt.Sprintf("experience[%d].", i))...)
	}
	for i := range r.Education {
		errs = append(errs, EducationFields.Check(&r.Education[i], fmt.Sprintf("education[%d].", i))...)
	}
	for i := range r.Skills {
		errs = append(errs, SkillFields.Check(&r.Skills[i], fmt.Sprintf("skills[%d].", i))...)
	}
	if len(errs) == 0 {
		return nil
	}
	return &apperr.ValidationError{Fields: errs}
}
