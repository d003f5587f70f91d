// Package jsonpath picks values out of decoded JSON with dotted paths such
// as "results[0].alternatives[0].transcript".
package jsonpath

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotJSON is returned by Transcript for bodies that are not a JSON
// object or array. Bare scalars such as 42 or "hi" count as not JSON.
var ErrNotJSON = errors.New("response is not a JSON document")

type step struct {
	key  string
	idxs []int
}

// Path is a compiled lookup path.
type Path []step

// Compile parses a dot-separated path. Each segment is a key optionally
// followed by array indexes, or indexes alone ("[0]").
func Compile(path string) (Path, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}
	var p Path
	for _, part := range strings.Split(path, ".") {
		s, err := parseStep(part)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", path, err)
		}
		p = append(p, s)
	}
	return p, nil
}

// MustCompile is Compile for package-level paths known to be valid.
func MustCompile(path string) Path {
	p, err := Compile(path)
	if err != nil {
		panic(err)
	}
	return p
}

func parseStep(token string) (step, error) {
	if token == "" {
		return step{}, errors.New("empty segment")
	}
	br := strings.Index(token, "[")
	if br == -1 {
		return step{key: token}, nil
	}
	s := step{key: token[:br]}
	rest := token[br:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return step{}, fmt.Errorf("invalid index syntax in %s", token)
		}
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			return step{}, fmt.Errorf("missing closing ] in %s", token)
		}
		num := rest[1:end]
		if num == "" {
			return step{}, fmt.Errorf("empty index in %s", token)
		}
		n, err := strconv.Atoi(num)
		if err != nil || n < 0 {
			return step{}, fmt.Errorf("invalid index '%s' in %s", num, token)
		}
		s.idxs = append(s.idxs, n)
		rest = rest[end+1:]
	}
	return s, nil
}

// Lookup walks root, a value produced by json.Unmarshal into an any.
func (p Path) Lookup(root any) (any, bool) {
	cur := root
	for _, s := range p {
		if s.key != "" {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = m[s.key]; !ok {
				return nil, false
			}
		}
		for _, i := range s.idxs {
			arr, ok := cur.([]any)
			if !ok || i >= len(arr) {
				return nil, false
			}
			cur = arr[i]
		}
	}
	return cur, true
}

// String looks up a scalar and formats it. Objects, arrays and null do
// not match.
func (p Path) String(root any) (string, bool) {
	v, ok := p.Lookup(root)
	if !ok {
		return "", false
	}
	return scalar(v)
}

func scalar(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

var textPath = MustCompile("text")

// Transcript returns the value at path in a JSON response body, falling
// back to the top-level "text" field. A body without either yields "".
func Transcript(body []byte, path string) (string, error) {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return "", ErrNotJSON
	}
	switch root.(type) {
	case map[string]any, []any:
	default:
		return "", ErrNotJSON
	}
	if path != "" {
		p, err := Compile(path)
		if err != nil {
			return "", err
		}
		if v, ok := p.String(root); ok {
			return v, nil
		}
	}
	v, _ := textPath.String(root)
	return v, nil
}
