package tools

import "fmt"

// Status classifies a tool outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailure Status = "failure"
)

// Result is the normalized envelope every tool invocation produces. Data
// holds tool-specific payload fields; Assumptions record inferences and
// unenforced constraints in natural language so the model can surface them;
// Warnings carry non-fatal caveats. A Result is built once per invocation
// and serialized immediately — only the invocation wrapper mutates it, to
// inject timing metadata before finalization.
type Result struct {
	Status      Status         `json:"status"`
	Data        map[string]any `json:"data"`
	Assumptions []string       `json:"assumptions"`
	Warnings    []string       `json:"warnings"`
	Tool        string         `json:"tool,omitempty"`
}

// Normalize converts any tool return value into a Result:
//
//   - a Result (or *Result) passes through unchanged except for the tool
//     name stamp;
//   - a map has status/assumptions/warnings extracted (tolerating missing
//     keys and wrong value types by defaulting) and every other key becomes
//     payload data;
//   - anything else yields a failure carrying an assumption that names the
//     unsupported return type.
//
// Normalize never fails; it is the one place arbitrary tool output is forced
// into the envelope contract.
func Normalize(toolName string, raw any) Result {
	var result Result

	switch v := raw.(type) {
	case Result:
		result = v
	case *Result:
		if v == nil {
			result = unsupported(raw)
		} else {
			result = *v
		}
	case map[string]any:
		data := make(map[string]any, len(v))
		for key, val := range v {
			switch key {
			case "status", "assumptions", "warnings", "tool":
				// envelope keys, extracted below
			default:
				data[key] = val
			}
		}
		result = Result{
			Status:      coerceStatus(v["status"]),
			Data:        data,
			Assumptions: coerceStrings(v["assumptions"]),
			Warnings:    coerceStrings(v["warnings"]),
		}
	default:
		result = unsupported(raw)
	}

	if result.Data == nil {
		result.Data = map[string]any{}
	}
	if result.Assumptions == nil {
		result.Assumptions = []string{}
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}
	result.Tool = toolName
	return result
}

func unsupported(raw any) Result {
	return Result{
		Status:      StatusFailure,
		Data:        map[string]any{},
		Assumptions: []string{fmt.Sprintf("Unsupported tool return type: %T", raw)},
	}
}

func coerceStatus(v any) Status {
	if s, ok := v.(string); ok {
		switch Status(s) {
		case StatusSuccess, StatusPartial, StatusFailure:
			return Status(s)
		}
	}
	if s, ok := v.(Status); ok {
		switch s {
		case StatusSuccess, StatusPartial, StatusFailure:
			return s
		}
	}
	return StatusSuccess
}

func coerceStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
