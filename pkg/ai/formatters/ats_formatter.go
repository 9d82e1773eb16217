package formatters

import "fmt"

const atsSchema = `{
  "type": "object",
  "required": ["optimizedCvContent"],
  "properties": {"optimizedCvContent": {"type": "string"}}
}`

const atsPrompt = `You are an AI-powered tool that optimizes CV content for Applicant Tracking Systems (ATS).

Your goal is to improve the CV's readability and ranking in ATS systems, increasing the chances of the candidate getting noticed by recruiters.

Optimize the CV content based on the provided job description.

CV Content: %s

Job Description: %s

Provide the optimized CV content that is ATS-friendly. Respond with ONLY a single JSON object of the form {"optimizedCvContent": "<the optimized CV content>"}.`

// NewATSFormatter expects "cvContent" and "jobDescription" and returns
// {"optimizedCvContent": string}.
func NewATSFormatter(chat Chatter) *JSONFormatter {
	return newJSONFormatter("ats", chat, atsSchema, func(payload map[string]interface{}) (string, error) {
		cv, err := stringField(payload, "cvContent")
		if err != nil {
			return "", err
		}
		jd, err := stringField(payload, "jobDescription")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(atsPrompt, cv, jd), nil
	})
}
