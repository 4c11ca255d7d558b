package tools

// Argument extraction helpers. Tool arguments arrive as map[string]any
// decoded from JSON, so numbers are usually float64 and lists are []any;
// the helpers tolerate the native Go types too so handlers can be called
// directly from tests and the CLI.

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg reads an integer argument, falling back to def when the key is
// missing or not numeric, then clamping into [min, max].
func intArg(args map[string]any, key string, def, min, max int) int {
	n := def
	switch v := args[key].(type) {
	case float64:
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	}
	if n < min {
		n = min
	}
	if n > max {
		n = max
	}
	return n
}

func boolArg(args map[string]any, key string, def bool) bool {
	if b, ok := args[key].(bool); ok {
		return b
	}
	return def
}

func stringSliceArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func int64SliceArg(args map[string]any, key string) []int64 {
	switch v := args[key].(type) {
	case []int64:
		return v
	case []any:
		out := make([]int64, 0, len(v))
		for _, item := range v {
			if id, ok := toInt64(item); ok {
				out = append(out, id)
			}
		}
		return out
	default:
		return nil
	}
}

func int64Arg(args map[string]any, key string) (int64, bool) {
	return toInt64(args[key])
}

func mapSliceArg(args map[string]any, key string) []map[string]any {
	switch v := args[key].(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}
