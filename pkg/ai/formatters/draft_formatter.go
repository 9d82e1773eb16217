package formatters

import "fmt"

const draftSchema = `{
  "type": "object",
  "required": ["cvDraft"],
  "properties": {"cvDraft": {"type": "string"}}
}`

const draftPrompt = `You are an expert CV writer. Generate a CV draft based on the following prompt:

%s

Respond with ONLY a single JSON object of the form {"cvDraft": "<the generated CV draft in text format>"}.`

// NewDraftFormatter expects a payload with "prompt" and returns
// {"cvDraft": string}.
func NewDraftFormatter(chat Chatter) *JSONFormatter {
	return newJSONFormatter("draft", chat, draftSchema, func(payload map[string]interface{}) (string, error) {
		p, err := stringField(payload, "prompt")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(draftPrompt, p), nil
	})
}
