package runner

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hmbui/bsacore-test/internal/testharness/engine"
)

// paramInt reads an integer parameter. Strings are parsed with base
// prefixes, so "0x36" is accepted.
func paramInt(params map[string]any, key string, def int) (int, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return def, nil
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", key, err)
	}
	return int(n), nil
}

// paramMasks reads a list of mask words.
func paramMasks(params map[string]any, key string) ([]uint32, error) {
	v, ok := params[key]
	if !ok {
		return nil, fmt.Errorf("parameter %s is required", key)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("parameter %s: expected a list, got %T", key, v)
	}
	masks := make([]uint32, len(list))
	for i, item := range list {
		n, err := toInt64(item)
		if err != nil {
			return nil, fmt.Errorf("parameter %s[%d]: %w", key, i, err)
		}
		if n < 0 || n > math.MaxUint32 {
			return nil, fmt.Errorf("parameter %s[%d]: %d out of range", key, i, n)
		}
		masks[i] = uint32(n)
	}
	return masks, nil
}

// paramDuration reads duration_seconds or duration_ms. The flag is false
// when neither is set to a non-negative number; zero is a valid duration.
func paramDuration(params map[string]any) (time.Duration, bool) {
	if v, ok := engine.ToFloat64(params[ParamDurationSeconds]); ok && v >= 0 {
		return time.Duration(v * float64(time.Second)), true
	}
	if v, ok := engine.ToFloat64(params[ParamDurationMs]); ok && v >= 0 {
		return time.Duration(v * float64(time.Millisecond)), true
	}
	return 0, false
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%d out of range", n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int64(n), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 0, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
