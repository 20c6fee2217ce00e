// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

type (
	// member is one key of a JSON object, kept in document order.
	member struct {
		key   string
		value any
	}

	// object is a JSON object with its key order preserved. Condition
	// matching in package exports depends on that order.
	object []member
)

// decodeOrdered parses raw into string, []any, object, or nil for other
// scalar values.
func decodeOrdered(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after exports value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var obj object
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, member{key: key, value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			var arr []any
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, errors.New("unexpected delimiter")
	case string:
		return t, nil
	default:
		return nil, nil
	}
}

// resolveExports maps subpath ("." or "./x") through a package exports
// field. active reports whether a condition name applies.
func resolveExports(raw json.RawMessage, subpath string, active func(string) bool) (string, bool) {
	root, err := decodeOrdered(raw)
	if err != nil || root == nil {
		return "", false
	}

	obj, isObj := root.(object)
	if !isObj || !hasSubpathKeys(obj) {
		if subpath != "." {
			return "", false
		}
		return resolveTarget(root, "", active)
	}

	for _, m := range obj {
		if m.key == subpath {
			return resolveTarget(m.value, "", active)
		}
	}

	bestPrefix := -1
	var (
		bestValue any
		bestMatch string
	)
	for _, m := range obj {
		star := strings.IndexByte(m.key, '*')
		if star < 0 {
			continue
		}
		prefix, suffix := m.key[:star], m.key[star+1:]
		if !strings.HasPrefix(subpath, prefix) || !strings.HasSuffix(subpath, suffix) ||
			len(subpath) < len(prefix)+len(suffix) {
			continue
		}
		if len(prefix) > bestPrefix {
			bestPrefix = len(prefix)
			bestValue = m.value
			bestMatch = subpath[len(prefix) : len(subpath)-len(suffix)]
		}
	}
	if bestPrefix < 0 {
		return "", false
	}
	return resolveTarget(bestValue, bestMatch, active)
}

func hasSubpathKeys(obj object) bool {
	for _, m := range obj {
		if strings.HasPrefix(m.key, ".") {
			return true
		}
	}
	return false
}

func resolveTarget(v any, match string, active func(string) bool) (string, bool) {
	switch t := v.(type) {
	case string:
		if !strings.HasPrefix(t, "./") {
			return "", false
		}
		return strings.ReplaceAll(t, "*", match), true
	case []any:
		for _, alt := range t {
			if target, ok := resolveTarget(alt, match, active); ok {
				return target, true
			}
		}
	case object:
		for _, m := range t {
			if m.key == "default" || active(m.key) {
				if target, ok := resolveTarget(m.value, match, active); ok {
					return target, true
				}
			}
		}
	}
	return "", false
}
