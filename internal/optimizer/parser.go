package optimizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse decodes the raw model reply into an OptimizationResult. Any
// structural violation discards the whole reply with a SchemaError.
// Impact values are checked for presence only.
func Parse(raw string) (*OptimizationResult, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	var top map[string]json.RawMessage
	if err := dec.Decode(&top); err != nil {
		return nil, &SchemaError{Reason: "decode reply", Err: err}
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &SchemaError{Reason: "unexpected data after reply object"}
	}
	if top == nil {
		return nil, &SchemaError{Reason: "reply is not an object"}
	}

	analysis, err := requiredString(top, "analysis")
	if err != nil {
		return nil, err
	}
	suggestions, err := parseSuggestions(top)
	if err != nil {
		return nil, err
	}
	out := &OptimizationResult{Analysis: analysis, Suggestions: suggestions}

	if rawPrompt, ok := present(top, "examplePrompt"); ok {
		var p string
		if err := json.Unmarshal(rawPrompt, &p); err != nil {
			return nil, &SchemaError{Reason: "examplePrompt must be a string", Err: err}
		}
		out.ExamplePrompt = &p
	}
	return out, nil
}

func parseSuggestions(top map[string]json.RawMessage) ([]Suggestion, error) {
	rawList, ok := present(top, "suggestions")
	if !ok {
		return nil, &SchemaError{Reason: "missing required field suggestions"}
	}
	if !bytes.HasPrefix(bytes.TrimSpace(rawList), []byte("[")) {
		return nil, &SchemaError{Reason: "suggestions must be an array"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawList, &items); err != nil {
		return nil, &SchemaError{Reason: "decode suggestions", Err: err}
	}

	out := make([]Suggestion, 0, len(items))
	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			return nil, &SchemaError{Reason: fmt.Sprintf("suggestions[%d] must be an object", i), Err: err}
		}
		title, err := requiredString(fields, "title")
		if err != nil {
			return nil, indexed(i, err)
		}
		desc, err := requiredString(fields, "description")
		if err != nil {
			return nil, indexed(i, err)
		}
		impact, err := requiredString(fields, "impact")
		if err != nil {
			return nil, indexed(i, err)
		}
		out = append(out, Suggestion{Title: title, Description: desc, Impact: Impact(impact)})
	}
	return out, nil
}

// present returns the raw field value, treating JSON null as absent.
func present(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	raw, ok := fields[name]
	if !ok {
		return nil, false
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func requiredString(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := present(fields, name)
	if !ok {
		return "", &SchemaError{Reason: "missing required field " + name}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &SchemaError{Reason: name + " must be a string", Err: err}
	}
	return s, nil
}

func indexed(i int, err error) error {
	var sErr *SchemaError
	if errors.As(err, &sErr) {
		return &SchemaError{Reason: fmt.Sprintf("suggestions[%d]: %s", i, sErr.Reason), Err: sErr.Err}
	}
	return err
}
