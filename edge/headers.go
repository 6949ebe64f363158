package edge

import (
	"net/http"
	"strings"
)

// HeaderValue is one value of a header, carrying the original-case name
// next to the value.
type HeaderValue struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

// Headers is the CloudFront header map. Map keys are lowercase header
// names; CloudFront ignores entries whose key is not lowercase, so every
// method here normalises the name before touching the map.
type Headers map[string][]HeaderValue

func headerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get returns the first value of the named header.
func (h Headers) Get(name string) (string, bool) {
	values := h[headerKey(name)]
	if len(values) == 0 {
		return "", false
	}

	return values[0].Value, true
}

// Values returns all values of the named header.
func (h Headers) Values(name string) []string {
	values := h[headerKey(name)]

	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.Value)
	}

	return out
}

// Has reports whether the named header is present.
func (h Headers) Has(name string) bool {
	_, ok := h[headerKey(name)]
	return ok
}

// Set replaces all values of the named header with a single value.
func (h Headers) Set(name, value string) {
	h[headerKey(name)] = []HeaderValue{{Key: displayName(name), Value: value}}
}

// Add appends a value to the named header.
func (h Headers) Add(name, value string) {
	key := headerKey(name)
	h[key] = append(h[key], HeaderValue{Key: displayName(name), Value: value})
}

// Del removes the named header. It is a no-op if the header is absent.
func (h Headers) Del(name string) {
	delete(h, headerKey(name))
}

// Clone returns a deep copy of the headers.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}

	c := make(Headers, len(h))
	for k, v := range h {
		values := make([]HeaderValue, len(v))
		copy(values, v)
		c[k] = values
	}

	return c
}

// displayName keeps the caller's casing unless it is all lowercase, in
// which case the canonical MIME form is used (x-frame-options becomes
// X-Frame-Options).
func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == strings.ToLower(name) {
		return http.CanonicalHeaderKey(name)
	}

	return name
}
