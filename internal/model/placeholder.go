package model

// Placeholder returns the sample document shown to a signed-in user who has
// no stored resume yet. Each call returns a fresh copy.
func Placeholder() *Resume {
	return &Resume{
		PersonalInfo: PersonalInfo{
			Name:     "John Doe",
			JobTitle: "Software Engineer",
			Email:    "john.doe@email.com",
			Phone:    "123-456-7890",
			Address:  "City, Country",
			LinkedIn: "linkedin.com/in/johndoe",
			Website:  "johndoe.dev",
		},
		Summary: "A passionate software engineer with a knack for creating elegant and efficient solutions.",
		Experience: []Experience{{
			ID:          "1",
			JobTitle:    "Senior Developer",
			Company:     "Tech Corp",
			Location:    "San Francisco, CA",
			StartDate:   "Jan 2020",
			EndDate:     PresentSentinel,
			Description: `- Building cool stuff with React and Node.js.\n- Mentoring junior developers.`,
		}},
		Education: []Education{{
			ID:             "1",
			Degree:         "B.S. in Computer Science",
			Institution:    "State University",
			Location:       "City, ST",
			GraduationDate: "May 2019",
		}},
		Skills: []Skill{{ID: "1", Name: "JavaScript"}},
	}
}
