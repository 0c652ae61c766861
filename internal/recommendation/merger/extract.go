package merger

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractJSON locates the JSON object in raw generator output, which may
// be wrapped in markdown fences or surrounded by prose.
func ExtractJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if isObject(s) {
		return s, true
	}

	if start := strings.Index(s, "```"); start >= 0 {
		body := s[start+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		}
		if end := strings.Index(body, "```"); end >= 0 {
			if fenced := strings.TrimSpace(body[:end]); isObject(fenced) {
				return fenced, true
			}
		}
	}

	first, last := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}')
	if first >= 0 && last > first {
		if candidate := s[first : last+1]; isObject(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isObject(s string) bool {
	return strings.HasPrefix(s, "{") && gjson.Valid(s)
}

func isPlaceholder(s string) bool {
	t := strings.ToLower(strings.TrimSpace(s))
	return t == "" || t == "undefined" || t == "null" || t == "n/a"
}

// str returns a non-blank string value. Other JSON types count as absent.
func str(r gjson.Result) (string, bool) {
	if r.Type != gjson.String || isPlaceholder(r.Str) {
		return "", false
	}
	return strings.TrimSpace(r.Str), true
}

// positive returns a finite number greater than zero.
func positive(r gjson.Result) (float64, bool) {
	if r.Type != gjson.Number {
		return 0, false
	}
	v := r.Num
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// intIn returns a whole number within [lo, hi].
func intIn(r gjson.Result, lo, hi int) (int, bool) {
	if r.Type != gjson.Number || r.Num != math.Trunc(r.Num) {
		return 0, false
	}
	n := int(r.Num)
	if n < lo || n > hi {
		return 0, false
	}
	return n, true
}

// strList returns the usable string items of an array value.
func strList(r gjson.Result) ([]string, bool) {
	if !r.IsArray() {
		return nil, false
	}
	out := []string{}
	for _, item := range r.Array() {
		if s, ok := str(item); ok {
			out = append(out, s)
		}
	}
	return out, len(out) > 0
}

func boolean(r gjson.Result) (bool, bool) {
	switch r.Type {
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	}
	return false, false
}
