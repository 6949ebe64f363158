package transform

import (
	"errors"
	"strings"

	"github.com/pwa-iframe/edgeshim/edge"
)

const (
	HeaderFrameOptions          = "X-Frame-Options"
	HeaderContentSecurityPolicy = "Content-Security-Policy"

	// DefaultFrameOptions only allows the page to be framed by itself.
	DefaultFrameOptions = "SAMEORIGIN"

	// DefaultRedirectMarkerHeader is the header S3 website origins use to
	// signal an object-level redirect.
	DefaultRedirectMarkerHeader = "x-amz-website-redirect-location"
)

var ErrMissingAncestorHost = errors.New("frame ancestor host not configured")

// Policy mutates the headers of a response.
type Policy interface {
	// Name returns the name of the policy.
	Name() string

	// Apply mutates the headers in place.
	Apply(headers edge.Headers) error
}

// AddFrameOptions sets the frame options header, replacing any existing value.
type AddFrameOptions struct {
	Value string
}

func (p AddFrameOptions) Name() string { return NameAddFrameOptions }

func (p AddFrameOptions) Apply(headers edge.Headers) error {
	value := p.Value
	if value == "" {
		value = DefaultFrameOptions
	}

	headers.Set(HeaderFrameOptions, value)
	return nil
}

// AddContentSecurityPolicy restricts which host may embed the response.
type AddContentSecurityPolicy struct {
	AncestorHost string
}

func (p AddContentSecurityPolicy) Name() string { return NameAddContentSecurityPolicy }

func (p AddContentSecurityPolicy) Apply(headers edge.Headers) error {
	host := strings.TrimSpace(p.AncestorHost)
	if host == "" {
		return ErrMissingAncestorHost
	}

	headers.Set(HeaderContentSecurityPolicy, FrameAncestors(host))
	return nil
}

// FrameAncestors returns the content security policy directive that only
// allows the given host to frame a response.
func FrameAncestors(host string) string {
	return "frame-ancestors " + host
}

// StripHeaders removes the named headers. Absent headers are ignored.
type StripHeaders struct {
	PolicyName string
	Headers    []string
}

func (p StripHeaders) Name() string { return p.PolicyName }

func (p StripHeaders) Apply(headers edge.Headers) error {
	for _, name := range p.Headers {
		headers.Del(name)
	}
	return nil
}

// StripFrameOptions removes the frame options header.
func StripFrameOptions() StripHeaders {
	return StripHeaders{
		PolicyName: NameStripFrameOptions,
		Headers:    []string{HeaderFrameOptions},
	}
}

// StripFrameOptionsAndRedirect removes the frame options header and the
// redirect marker header.
func StripFrameOptionsAndRedirect(redirectMarker string) StripHeaders {
	if redirectMarker == "" {
		redirectMarker = DefaultRedirectMarkerHeader
	}

	return StripHeaders{
		PolicyName: NameStripFrameOptionsRedirect,
		Headers:    []string{HeaderFrameOptions, redirectMarker},
	}
}

