package editor

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cv-builder/internal/apperr"
	"cv-builder/internal/model"
)

var (
	ErrUnknownPath  = errors.New("unknown field path")
	ErrReadOnlyPath = errors.New("field is set by photo upload only")
)

// PhotoPath holds the stored photo URI. Only SetPhoto writes it.
const PhotoPath = "personalInfo.photoUrl"

// List names accepted by Append and Remove.
const (
	ListExperience = "experience"
	ListEducation  = "education"
	ListSkills     = "skills"
)

var pathRe = regexp.MustCompile(`^(\w+)(?:\[(\d+)\])?(?:\.(\w+))?$`)

// fieldRef is a resolved path: a pointer into the document plus the check
// for the value it holds.
type fieldRef struct {
	ptr   *string
	check func(string) (string, bool)
}

// resolve maps a path such as "personalInfo.email", "summary" or
// "experience[0].description" onto a field of doc.
func resolve(doc *model.Resume, path string) (fieldRef, error) {
	m := pathRe.FindStringSubmatch(path)
	if m == nil {
		return fieldRef{}, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}
	section, idxStr, name := m[1], m[2], m[3]
	hasIdx := idxStr != ""
	idx := 0
	if hasIdx {
		n, err := strconv.Atoi(idxStr)
		if err != nil {
			return fieldRef{}, fmt.Errorf("%w: %q", ErrUnknownPath, path)
		}
		idx = n
	}
	unknown := fmt.Errorf("%w: %q", ErrUnknownPath, path)

	switch section {
	case "summary":
		if hasIdx || name != "" {
			return fieldRef{}, unknown
		}
		return fieldRef{ptr: &doc.Summary, check: checkSummary}, nil
	case "personalInfo":
		if hasIdx {
			return fieldRef{}, unknown
		}
		return bind(model.PersonalInfoFields, &doc.PersonalInfo, name, unknown)
	case ListExperience:
		if !hasIdx || idx >= len(doc.Experience) {
			return fieldRef{}, unknown
		}
		return bind(model.ExperienceFields, &doc.Experience[idx], name, unknown)
	case ListEducation:
		if !hasIdx || idx >= len(doc.Education) {
			return fieldRef{}, unknown
		}
		return bind(model.EducationFields, &doc.Education[idx], name, unknown)
	case ListSkills:
		if !hasIdx || idx >= len(doc.Skills) {
			return fieldRef{}, unknown
		}
		return bind(model.SkillFields, &doc.Skills[idx], name, unknown)
	}
	return fieldRef{}, unknown
}

func bind[T any](fields model.Fields[T], v *T, name string, unknown error) (fieldRef, error) {
	f, ok := fields.Find(name)
	if !ok {
		return fieldRef{}, unknown
	}
	return fieldRef{ptr: f.Ref(v), check: f.CheckValue}, nil
}

func checkSummary(v string) (string, bool) {
	if strings.TrimSpace(v) == "" {
		return "Summary is required", true
	}
	return "", false
}

func fieldError(path, msg string) error {
	return &apperr.ValidationError{Fields: []apperr.FieldError{{Path: path, Message: msg}}}
}
