package model

// Go models that match resume.schema.json, used for validation, persistence
// and rendering. JSON names follow the stored document layout.

// PresentSentinel is the EndDate value for a current position.
const PresentSentinel = "Present"

type PersonalInfo struct {
	Name     string `json:"name"`
	JobTitle string `json:"jobTitle"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

type Experience struct {
	ID          string `json:"id"`
	JobTitle    string `json:"jobTitle"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// Current reports whether the entry is the holder's current position.
func (e Experience) Current() bool { return e.EndDate == PresentSentinel }

type Education struct {
	ID             string `json:"id"`
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`
	Location       string `json:"location,omitempty"`
	GraduationDate string `json:"graduationDate"`
}

type Skill struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Resume struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Summary      string       `json:"summary"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Skills       []Skill      `json:"skills"`
}

// Clone returns a deep copy. Nil collections come back as empty slices so
// the copy always serializes with all sections present.
func (r *Resume) Clone() *Resume {
	if r == nil {
		return nil
	}
	out := &Resume{
		PersonalInfo: r.PersonalInfo,
		Summary:      r.Summary,
		Experience:   make([]Experience, len(r.Experience)),
		Education:    make([]Education, len(r.Education)),
		Skills:       make([]Skill, len(r.Skills)),
	}
	copy(out.Experience, r.Experience)
	copy(out.Education, r.Education)
	copy(out.Skills, r.Skills)
	return out
}

// IsComplete reports whether the document has the fields a finished resume
// needs. Drafts are allowed to be incomplete.
func (r *Resume) IsComplete() bool {
	return r != nil && r.PersonalInfo.Name != "" && r.PersonalInfo.JobTitle != ""
}

// Normalize replaces nil collections with empty ones and assigns identifiers
// to entries that are missing one or that repeat an earlier id in the same
// list.
func (r *Resume) Normalize() {
	if r.Experience == nil {
		r.Experience = []Experience{}
	}
	if r.Education == nil {
		r.Education = []Education{}
	}
	if r.Skills == nil {
		r.Skills = []Skill{}
	}
	fix := newIDFixer()
	for i := range r.Experience {
		fix(&r.Experience[i].ID)
	}
	fix = newIDFixer()
	for i := range r.Education {
		fix(&r.Education[i].ID)
	}
	fix = newIDFixer()
	for i := range r.Skills {
		fix(&r.Skills[i].ID)
	}
}

// newIDFixer returns a func that keeps identifiers unique within one list.
func newIDFixer() func(*string) {
	seen := map[string]struct{}{}
	return func(id *string) {
		if _, dup := seen[*id]; *id == "" || dup {
			*id = NewEntryID()
		}
		seen[*id] = struct{}{}
	}
}
