package edge

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownStage = errors.New("unknown stage")

// Stage is a CloudFront lifecycle event type.
type Stage string

const (
	StageViewerRequest  Stage = "viewer-request"
	StageOriginRequest  Stage = "origin-request"
	StageOriginResponse Stage = "origin-response"
	StageViewerResponse Stage = "viewer-response"
)

// Stages lists all stages in the order CloudFront runs them.
var Stages = []Stage{
	StageViewerRequest,
	StageOriginRequest,
	StageOriginResponse,
	StageViewerResponse,
}

func ParseStage(s string) (Stage, error) {
	switch stage := Stage(strings.ToLower(strings.TrimSpace(s))); stage {
	case StageViewerRequest, StageOriginRequest, StageOriginResponse, StageViewerResponse:
		return stage, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
}

// IsRequest reports whether the stage runs before the origin is contacted.
func (s Stage) IsRequest() bool {
	return s == StageViewerRequest || s == StageOriginRequest
}

// IsResponse reports whether the stage runs on the way back to the viewer.
func (s Stage) IsResponse() bool {
	return s == StageOriginResponse || s == StageViewerResponse
}

func (s Stage) String() string {
	return string(s)
}
