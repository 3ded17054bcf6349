// Package canonicalize provides deterministic key ordering and RFC 8785
// (JSON Canonicalization Scheme) serialization for signed lead payloads.
package canonicalize

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"github.com/gowebpki/jcs"
)

// Member is a single key/value pair of a canonical object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object whose members are kept in canonical order.
// Go maps carry no order, so canonical objects are materialized as a slice.
type Object []Member

// MarshalJSON encodes the members in slice order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := encodeNoEscape(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns the member keys in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// Canonicalize returns v with every object's keys reordered ascending,
// recursively, including objects nested in arrays. Scalars pass through
// unchanged; numbers are carried as json.Number so no precision is lost.
//
// v may be any JSON-marshalable value: structs (json tags are honored),
// maps, slices, json.RawMessage or an already canonical Object.
func Canonicalize(v any) (any, error) {
	intermediate, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: pre-marshal failed: %w", err)
	}

	var generic any
	decoder := json.NewDecoder(bytes.NewReader(intermediate))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canonicalize: intermediate decode failed: %w", err)
	}

	return sortRecursive(generic), nil
}

func sortRecursive(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return lessUTF16(keys[i], keys[j]) })

		obj := make(Object, 0, len(keys))
		for _, k := range keys {
			obj = append(obj, Member{Key: k, Value: sortRecursive(t[k])})
		}
		return obj
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = sortRecursive(elem)
		}
		return out
	default:
		return t
	}
}

// lessUTF16 orders strings by UTF-16 code units, the ordering RFC 8785 and
// ECMAScript Array.prototype.sort use.
func lessUTF16(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}

// JCS returns the RFC 8785 canonical JSON representation of v.
//
// The canonical form has sorted keys, no insignificant whitespace, no HTML
// escaping and ECMAScript number formatting, so it matches the text a
// JavaScript receiver gets from JSON.stringify over the key-sorted value.
func JCS(v any) ([]byte, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(canonical)
	if err != nil {
		return nil, fmt.Errorf("jcs: marshal failed: %w", err)
	}

	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("jcs: transform failed: %w", err)
	}
	return out, nil
}

// JCSString returns the JCS canonical form as a string.
func JCSString(v any) (string, error) {
	data, err := JCS(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CanonicalHash returns the SHA-256 hex digest of the canonical JSON representation of v.
func CanonicalHash(v any) (string, error) {
	b, err := JCS(v)
	if err != nil {
		return "", err
	}
	return HashBytes(b), nil
}

// HashBytes computes SHA-256 hash of raw bytes and returns hex string
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func encodeNoEscape(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// json.Encoder adds a newline, we must trim it
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
