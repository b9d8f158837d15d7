package checker

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MatchValue checks an observed value against an expected one.
// Returns (true, "") on match, (false, reason) on mismatch.
//
// Expected strings can carry matchers instead of literals:
//
//	~pattern~   regular expression match
//	>x <x >=x <=x   numeric comparison
//	bytes:N     base64 string that decodes to exactly N bytes
//
// Maps match as subsets: every expected key must be present and
// match, extra observed keys are ignored. Numbers compare by value
// across types, since YAML decodes 288 as int while JSON payloads
// arrive as float64.
func MatchValue(actual, expected interface{}) (bool, string) {
	if expected == nil {
		if actual == nil {
			return true, ""
		}
		return false, fmt.Sprintf("expected nil, got %v", actual)
	}
	if actual == nil {
		return false, fmt.Sprintf("expected %v, got nil", expected)
	}

	if expectedStr, ok := expected.(string); ok {
		if strings.HasPrefix(expectedStr, "~") && strings.HasSuffix(expectedStr, "~") && len(expectedStr) > 1 {
			return matchRegex(actual, strings.Trim(expectedStr, "~"))
		}
		if strings.HasPrefix(expectedStr, ">") || strings.HasPrefix(expectedStr, "<") {
			return matchComparison(actual, expectedStr)
		}
		if rest, ok := strings.CutPrefix(expectedStr, "bytes:"); ok {
			return matchPackedBytes(actual, rest)
		}
	}

	switch exp := expected.(type) {
	case string:
		actualStr, ok := actual.(string)
		if !ok {
			return false, fmt.Sprintf("expected string %q, got %T", exp, actual)
		}
		if actualStr != exp {
			return false, fmt.Sprintf("expected %q, got %q", exp, actualStr)
		}
		return true, ""

	case bool:
		actualBool, ok := actual.(bool)
		if !ok {
			return false, fmt.Sprintf("expected bool %v, got %T", exp, actual)
		}
		if actualBool != exp {
			return false, fmt.Sprintf("expected %v, got %v", exp, actualBool)
		}
		return true, ""

	case int, int64, float64:
		return matchNumber(actual, expected)

	case map[string]interface{}:
		return matchMap(actual, exp)

	case []interface{}:
		return matchArray(actual, exp)

	default:
		return false, fmt.Sprintf("unsupported expected type %T", expected)
	}
}

// matchNumber compares by value after converting both sides
func matchNumber(actual, expected interface{}) (bool, string) {
	actualFloat, err := toFloat64(actual)
	if err != nil {
		return false, fmt.Sprintf("actual value is not numeric: %v", actual)
	}
	expectedFloat, err := toFloat64(expected)
	if err != nil {
		return false, fmt.Sprintf("expected value is not numeric: %v", expected)
	}
	if actualFloat != expectedFloat {
		return false, fmt.Sprintf("expected %v, got %v", expected, actual)
	}
	return true, ""
}

// matchRegex checks the string form of actual against a pattern
func matchRegex(actual interface{}, pattern string) (bool, string) {
	actualStr := fmt.Sprintf("%v", actual)

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid regex pattern %q: %v", pattern, err)
	}

	if !re.MatchString(actualStr) {
		return false, fmt.Sprintf("value %q does not match pattern ~%s~", actualStr, pattern)
	}
	return true, ""
}

// matchComparison checks actual against >x, <x, >=x or <=x
func matchComparison(actual interface{}, comparison string) (bool, string) {
	actualFloat, err := toFloat64(actual)
	if err != nil {
		return false, fmt.Sprintf("cannot compare non-numeric value: %v", actual)
	}

	var op, valueStr string
	switch {
	case strings.HasPrefix(comparison, ">="):
		op, valueStr = ">=", comparison[2:]
	case strings.HasPrefix(comparison, "<="):
		op, valueStr = "<=", comparison[2:]
	case strings.HasPrefix(comparison, ">"):
		op, valueStr = ">", comparison[1:]
	case strings.HasPrefix(comparison, "<"):
		op, valueStr = "<", comparison[1:]
	default:
		return false, fmt.Sprintf("invalid comparison: %s", comparison)
	}

	threshold, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil {
		return false, fmt.Sprintf("invalid comparison value: %s", valueStr)
	}

	var passed bool
	switch op {
	case ">":
		passed = actualFloat > threshold
	case "<":
		passed = actualFloat < threshold
	case ">=":
		passed = actualFloat >= threshold
	case "<=":
		passed = actualFloat <= threshold
	}

	if !passed {
		return false, fmt.Sprintf("expected %v %s %v", actualFloat, op, threshold)
	}
	return true, ""
}

// matchPackedBytes checks that actual is a base64 buffer of the
// given decoded size. Frames and descriptors carry packed colors
// and positions this way, so scenarios can assert buffer sizes
// without spelling out the content.
func matchPackedBytes(actual interface{}, sizeStr string) (bool, string) {
	actualStr, ok := actual.(string)
	if !ok {
		return false, fmt.Sprintf("expected base64 string, got %T", actual)
	}

	want, err := strconv.Atoi(strings.TrimSpace(sizeStr))
	if err != nil {
		return false, fmt.Sprintf("invalid bytes matcher size: %s", sizeStr)
	}

	buf, err := base64.StdEncoding.DecodeString(actualStr)
	if err != nil {
		return false, fmt.Sprintf("value is not valid base64: %v", err)
	}

	if len(buf) != want {
		return false, fmt.Sprintf("expected %d packed bytes, got %d", want, len(buf))
	}
	return true, ""
}

// matchMap checks every expected key recursively
func matchMap(actual interface{}, expected map[string]interface{}) (bool, string) {
	actualMap, ok := actual.(map[string]interface{})
	if !ok {
		return false, fmt.Sprintf("expected object, got %T", actual)
	}

	for key, expectedValue := range expected {
		actualValue, exists := actualMap[key]
		if !exists {
			return false, fmt.Sprintf("missing key %q", key)
		}

		matches, reason := MatchValue(actualValue, expectedValue)
		if !matches {
			return false, fmt.Sprintf("key %q: %s", key, reason)
		}
	}

	return true, ""
}

// matchArray checks length and every element in order
func matchArray(actual interface{}, expected []interface{}) (bool, string) {
	actualArr, ok := actual.([]interface{})
	if !ok {
		return false, fmt.Sprintf("expected array, got %T", actual)
	}

	if len(actualArr) != len(expected) {
		return false, fmt.Sprintf("expected array length %d, got %d", len(expected), len(actualArr))
	}

	for i := range expected {
		matches, reason := MatchValue(actualArr[i], expected[i])
		if !matches {
			return false, fmt.Sprintf("element %d: %s", i, reason)
		}
	}

	return true, ""
}

// toFloat64 converts numeric values and numeric strings. Redis
// returns every hash field as a string, so string parsing keeps
// comparisons usable against stored state.
func toFloat64(val interface{}) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("not a numeric string: %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a numeric type: %T", val)
	}
}
