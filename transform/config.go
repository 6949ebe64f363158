package transform

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

const (
	NameAddFrameOptions           = "add-frame-options"
	NameStripFrameOptions         = "strip-frame-options"
	NameAddContentSecurityPolicy  = "add-content-security-policy"
	NameStripFrameOptionsRedirect = "strip-frame-options-redirect"
)

var ErrUnknownPolicy = errors.New("unknown policy")

// Names lists the names of all header transform policies.
var Names = []string{
	NameAddFrameOptions,
	NameStripFrameOptions,
	NameAddContentSecurityPolicy,
	NameStripFrameOptionsRedirect,
}

type Config struct {
	// FrameOptionsValue is the value written by add-frame-options
	FrameOptionsValue string `conf:"frame_options_value"`

	// AncestorHost is the host allowed to frame responses passing
	// through add-content-security-policy
	AncestorHost string `conf:"ancestor_host"`

	// RedirectMarkerHeader is the header removed next to the frame
	// options by strip-frame-options-redirect
	RedirectMarkerHeader string `conf:"redirect_marker_header"`
}

var DefaultConfig = Config{
	FrameOptionsValue:    DefaultFrameOptions,
	RedirectMarkerHeader: DefaultRedirectMarkerHeader,
}

// NewPolicy builds the named policy from config.
func NewPolicy(name string, cfg Config) (Policy, error) {
	switch name {
	case NameAddFrameOptions:
		return AddFrameOptions{Value: cfg.FrameOptionsValue}, nil
	case NameStripFrameOptions:
		return StripFrameOptions(), nil
	case NameAddContentSecurityPolicy:
		return AddContentSecurityPolicy{AncestorHost: cfg.AncestorHost}, nil
	case NameStripFrameOptionsRedirect:
		return StripFrameOptionsAndRedirect(cfg.RedirectMarkerHeader), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
}

// IsPolicy reports whether name refers to a header transform policy.
func IsPolicy(name string) bool {
	return lo.Contains(Names, name)
}
