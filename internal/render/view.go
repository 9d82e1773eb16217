package render

import (
	"html/template"

	"cv-builder/internal/model"
)

type contactItem struct {
	Kind string
	Text string
}

type experienceView struct {
	model.Experience
	Bullets []string
}

// view is the data handed to every template.
type view struct {
	P          model.PersonalInfo
	Summary    string
	Experience []experienceView
	Education  []model.Education
	Skills     []model.Skill
	Contacts   []contactItem
	L          map[string]string
	CSS        template.CSS
	Icons      bool
}

func newView(doc *model.Resume, l layout) view {
	v := view{
		P:         doc.PersonalInfo,
		Summary:   doc.Summary,
		Education: doc.Education,
		Skills:    doc.Skills,
		L:         l.labels,
		CSS:       baseCSS,
		Icons:     l.icons,
	}
	for _, e := range doc.Experience {
		v.Experience = append(v.Experience, experienceView{Experience: e, Bullets: model.DescriptionLines(e.Description)})
	}

	p := doc.PersonalInfo
	website := p.Website
	if l.siteLabels {
		website = siteLabel(website)
	}
	linkedin := p.LinkedIn
	if l.profileLinks {
		linkedin = profileLink(linkedin)
	}
	for _, c := range []contactItem{
		{"email", p.Email},
		{"phone", p.Phone},
		{"address", p.Address},
		{"linkedin", linkedin},
		{"website", website},
	} {
		if c.Text != "" {
			v.Contacts = append(v.Contacts, c)
		}
	}
	return v
}
