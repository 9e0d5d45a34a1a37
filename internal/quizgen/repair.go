package quizgen

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RepairJSON coerces raw model output into a JSON array of objects.
//
// Code fences and any text outside complete top-level objects are removed,
// so prose, stray brackets and a truncated trailing object all disappear.
// A "{" that never closes is treated as prose and scanning resumes after
// it. A wrapper object whose only array holds objects, such as
// {"questions":[...]}, is replaced by the objects it wraps. The surviving
// objects are joined into an array; input without a single complete
// object yields "[]". The objects themselves are not checked against the
// question schema.
func RepairJSON(raw string) string {
	s := stripFences(raw)

	var objects []string
	for _, obj := range scanObjects(s) {
		objects = append(objects, unwrapObject(obj)...)
	}

	if len(objects) == 0 {
		return "[]"
	}
	return "[" + strings.Join(objects, ",") + "]"
}

// scanObjects returns the balanced top-level {...} spans of s that are
// valid JSON, in order.
func scanObjects(s string) []string {
	var objects []string

	for from := 0; from < len(s); {
		depth, start := 0, -1
		inString, escaped := false, false

		for i := from; i < len(s); i++ {
			c := s[i]

			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}

			switch c {
			case '"':
				// Strings only matter inside an object.
				if depth > 0 {
					inString = true
				}
			case '{':
				if depth == 0 {
					start = i
				}
				depth++
			case '}':
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					if span := s[start : i+1]; json.Valid([]byte(span)) {
						objects = append(objects, span)
					}
				}
			}
		}

		if depth == 0 {
			break
		}
		// The object opened at start never closed: either the output was
		// cut off or the brace was prose. Rescan from just past it.
		from = start + 1
	}
	return objects
}

// unwrapObject returns the elements of obj's only array when that array
// is non-empty and holds nothing but objects. Otherwise obj is returned
// as is.
func unwrapObject(obj string) []string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return []string{obj}
	}

	var inner []json.RawMessage
	arrays := 0
	for _, v := range fields {
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err != nil {
			continue
		}
		arrays++
		inner = arr
	}
	if arrays != 1 {
		return []string{obj}
	}
	if len(inner) == 0 {
		return []string{obj}
	}

	out := make([]string, 0, len(inner))
	for _, el := range inner {
		el = bytes.TrimSpace(el)
		if len(el) == 0 || el[0] != '{' {
			return []string{obj}
		}
		out = append(out, string(el))
	}
	return out
}

// stripFences returns the body of the first ``` fenced block, or s
// unchanged when there is none. An unterminated fence keeps everything
// after the opening line.
func stripFences(s string) string {
	open := strings.Index(s, "```")
	if open < 0 {
		return s
	}
	body := s[open+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		// Fence and content on one line: skip a language tag if present.
		body = strings.TrimPrefix(body, "json")
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return body
}
