package render

// Section keys shared by every layout. Templates look headers up by key so
// the emitted headers and Document.Sections cannot drift apart.
const (
	secContact    = "contact"
	secSummary    = "summary"
	secExperience = "experience"
	secEducation  = "education"
	secSkills     = "skills"
	secJob        = "job"

	// right-to-left column of the bilingual layout
	secSummaryAlt    = "summaryAlt"
	secExperienceAlt = "experienceAlt"
	secEducationAlt  = "educationAlt"
	secSkillsAlt     = "skillsAlt"
)

type layout struct {
	labels map[string]string
	order  []string

	// siteLabels shortens website links to the registrable domain.
	siteLabels   bool
	// profileLinks expands a bare LinkedIn handle into a profile path.
	profileLinks bool
	icons        bool
}

func (l layout) headers() []string {
	out := make([]string, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, l.labels[k])
	}
	return out
}

var arabic = map[string]string{
	secSummaryAlt:    "الملخص",
	secExperienceAlt: "الخبرة العملية",
	secEducationAlt:  "التعليم",
	secSkillsAlt:     "المهارات",
}

var layouts = map[TemplateID]layout{
	Standard: {
		labels: map[string]string{
			secContact: "CONTACT", secSkills: "SKILLS", secEducation: "EDUCATION",
			secSummary: "SUMMARY", secExperience: "EXPERIENCE",
		},
		order: []string{secContact, secSkills, secEducation, secSummary, secExperience},
		icons: true,
	},
	Classic: {
		labels: map[string]string{
			secSummary: "Summary", secExperience: "Experience", secEducation: "Education", secSkills: "Skills",
		},
		order: []string{secSummary, secExperience, secEducation, secSkills},
		icons: true,
	},
	Modern: {
		labels: map[string]string{
			secContact: "Contact", secSkills: "Skills", secEducation: "Education",
			secSummary: "Summary", secExperience: "Experience",
		},
		order: []string{secContact, secSkills, secEducation, secSummary, secExperience},
		icons: true,
	},
	Europass: {
		labels: map[string]string{
			secContact: "Contact", secSkills: "Skills", secJob: "Job Applied For",
			secSummary: "Personal Statement", secExperience: "Work Experience",
			secEducation: "Education and Training",
		},
		order:      []string{secContact, secSkills, secJob, secSummary, secExperience, secEducation},
		siteLabels: true,
		icons:      true,
	},
	Canadian: {
		labels: map[string]string{
			secSummary: "SUMMARY", secExperience: "PROFESSIONAL EXPERIENCE",
			secEducation: "EDUCATION", secSkills: "KEY SKILLS",
		},
		order:        []string{secSummary, secExperience, secEducation, secSkills},
		siteLabels:   true,
		profileLinks: true,
	},
	Bilingual: {
		labels: merge(map[string]string{
			secSummary: "Summary", secExperience: "Experience", secEducation: "Education", secSkills: "Skills",
		}, arabic),
		order: []string{
			secSummary, secExperience, secEducation, secSkills,
			secSummaryAlt, secExperienceAlt, secEducationAlt, secSkillsAlt,
		},
		icons: true,
	},
	ATS: {
		labels: map[string]string{
			secSummary: "PROFESSIONAL SUMMARY", secSkills: "SKILLS",
			secExperience: "EXPERIENCE", secEducation: "EDUCATION",
		},
		order:        []string{secSummary, secSkills, secExperience, secEducation},
		profileLinks: true,
	},
}

func merge(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
