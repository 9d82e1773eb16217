// Package formatters holds the prompt and reply contract of each model
// operation.
package formatters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SystemPrompt is sent as the system instruction where the backend has one.
const SystemPrompt = "You answer with exactly one JSON object and nothing else: no commentary, no markdown, no code fences."

// Chatter sends one prompt to a model and returns its raw text output.
type Chatter interface {
	Chat(ctx context.Context, input string) (string, error)
}

// JSONFormatter builds a prompt from the payload, asks the model and checks
// the reply against a JSON schema.
type JSONFormatter struct {
	name   string
	chat   Chatter
	prompt func(payload map[string]interface{}) (string, error)
	schema *gojsonschema.Schema
}

func newJSONFormatter(name string, chat Chatter, schema string, prompt func(map[string]interface{}) (string, error)) *JSONFormatter {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("formatters: %s schema: %v", name, err))
	}
	return &JSONFormatter{name: name, chat: chat, prompt: prompt, schema: s}
}

func (f *JSONFormatter) Format(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	input, err := f.prompt(payload)
	if err != nil {
		return nil, err
	}
	output, err := f.chat.Chat(ctx, input)
	if err != nil {
		return nil, err
	}
	out, err := ExtractJSON(output)
	if err != nil {
		return nil, err
	}

	res, err := f.schema.Validate(gojsonschema.NewGoLoader(out))
	if err != nil {
		return nil, fmt.Errorf("%s: validate reply: %w", f.name, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%s: reply does not match schema: %s", f.name, strings.Join(msgs, "; "))
	}
	return out, nil
}

// ExtractJSON parses the model output as a JSON object. When the object is
// wrapped in other text, the span from the first '{' to the last '}' is
// tried instead.
func ExtractJSON(s string) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := json.Unmarshal([]byte(s), &out)
	if err == nil {
		return out, nil
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		if err2 := json.Unmarshal([]byte(s[start:end+1]), &out); err2 == nil {
			return out, nil
		}
	}
	return nil, fmt.Errorf("ai-service returned non-json content: %w", err)
}

func stringField(payload map[string]interface{}, key string) (string, error) {
	v, ok := payload[key].(string)
	if !ok {
		return "", fmt.Errorf("payload field %q must be a string", key)
	}
	return v, nil
}
