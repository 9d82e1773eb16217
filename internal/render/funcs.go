package render

import (
	"html/template"
	"math"
	"net/url"
	"strings"

	"cv-builder/internal/model"

	"golang.org/x/net/publicsuffix"
)

var funcs = template.FuncMap{
	"icon":       icon,
	"skillNames": skillNames,
	"column":     column,
	"ring":       ring,
}

type columnView struct {
	V          view
	Summary    string
	Experience string
	Education  string
	Skills     string
}

// column binds one set of section headers to the shared view, so both
// bilingual columns render from the same partial.
func column(v view, summary, experience, education, skills string) columnView {
	return columnView{V: v, Summary: summary, Experience: experience, Education: education, Skills: skills}
}

var starRing = func() [][2]float64 {
	out := make([][2]float64, 12)
	for i := range out {
		a := float64(i) * math.Pi / 6
		out[i] = [2]float64{
			math.Round((32+20*math.Cos(a))*100) / 100,
			math.Round((32+20*math.Sin(a))*100) / 100,
		}
	}
	return out
}()

// ring returns the twelve star positions of the Europass mark.
func ring() [][2]float64 { return starRing }

// siteLabel shortens a website to its registrable domain, for example
// "https://blog.jane.co.uk/about" becomes "jane.co.uk". Values that do not
// parse are returned unchanged.
func siteLabel(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

// profileLink turns a bare handle into "linkedin.com/in/<handle>". Values
// that already name the site are kept.
func profileLink(handle string) string {
	if handle == "" || strings.Contains(strings.ToLower(handle), "linkedin.com") {
		return handle
	}
	return "linkedin.com/in/" + strings.TrimPrefix(handle, "@")
}

func skillNames(skills []model.Skill, sep string) string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return strings.Join(names, sep)
}

const svgOpen = `<svg class="icon" xmlns="http://www.w3.org/2000/svg" width="12" height="12" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round">`

var iconPaths = map[string]string{
	"email":    `<rect x="2" y="4" width="20" height="16" rx="2"/><path d="m22 7-10 6L2 7"/>`,
	"phone":    `<path d="M22 16.9v3a2 2 0 0 1-2.2 2 19.8 19.8 0 0 1-8.6-3.1 19.5 19.5 0 0 1-6-6A19.8 19.8 0 0 1 2.1 4.2 2 2 0 0 1 4.1 2h3a2 2 0 0 1 2 1.7c.1.9.4 1.8.7 2.7a2 2 0 0 1-.5 2.1L8 9.8a16 16 0 0 0 6 6l1.3-1.3a2 2 0 0 1 2.1-.4c.9.3 1.8.6 2.7.7a2 2 0 0 1 1.7 2z"/>`,
	"address":  `<path d="M20 10c0 6-8 12-8 12s-8-6-8-12a8 8 0 0 1 16 0Z"/><circle cx="12" cy="10" r="3"/>`,
	"linkedin": `<path d="M16 8a6 6 0 0 1 6 6v7h-4v-7a2 2 0 0 0-4 0v7h-4v-7a6 6 0 0 1 6-6z"/><rect x="2" y="9" width="4" height="12"/><circle cx="4" cy="4" r="2"/>`,
	"website":  `<circle cx="12" cy="12" r="10"/><path d="M2 12h20"/><path d="M12 2a15.3 15.3 0 0 1 4 10 15.3 15.3 0 0 1-4 10 15.3 15.3 0 0 1-4-10 15.3 15.3 0 0 1 4-10z"/>`,
	"user":     `<path d="M19 21v-2a4 4 0 0 0-4-4H9a4 4 0 0 0-4 4v2"/><circle cx="12" cy="7" r="4"/>`,
}

func icon(kind string) template.HTML {
	p, ok := iconPaths[kind]
	if !ok {
		return ""
	}
	return template.HTML(svgOpen + p + `</svg>`)
}
