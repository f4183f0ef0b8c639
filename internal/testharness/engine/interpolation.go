package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// variablePattern matches {{ name }} references to earlier step outputs.
var variablePattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// Interpolate replaces {{ name }} references in s with output values.
// Unknown names are left in place.
func Interpolate(s string, state *ExecutionState) string {
	if state == nil {
		return s
	}
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		name := variablePattern.FindStringSubmatch(match)[1]
		if v, ok := state.Outputs[name]; ok {
			return valueToString(v)
		}
		return match
	})
}

// InterpolateParams returns a copy of params with every string resolved.
// A string that is exactly one reference keeps the referenced value's type,
// so "{{ slot }}" yields an int.
func InterpolateParams(params map[string]interface{}, state *ExecutionState) map[string]interface{} {
	if params == nil {
		return nil
	}
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		out[k] = interpolateValue(v, state)
	}
	return out
}

func interpolateValue(value interface{}, state *ExecutionState) interface{} {
	switch v := value.(type) {
	case string:
		if state == nil {
			return v
		}
		trimmed := strings.TrimSpace(v)
		if loc := variablePattern.FindStringSubmatchIndex(trimmed); loc != nil && loc[0] == 0 && loc[1] == len(trimmed) {
			if got, ok := state.Outputs[trimmed[loc[2]:loc[3]]]; ok {
				return got
			}
			return v
		}
		return Interpolate(v, state)
	case map[string]interface{}:
		return InterpolateParams(v, state)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = interpolateValue(item, state)
		}
		return out
	default:
		return value
	}
}

func valueToString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
