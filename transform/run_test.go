package transform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pwa-iframe/edgeshim/edge"
	"github.com/pwa-iframe/edgeshim/transform"
)

type panickingPolicy struct{}

func (panickingPolicy) Name() string { return "panicking" }

func (panickingPolicy) Apply(headers edge.Headers) error {
	headers.Set("x-half-written", "1")
	panic("nil map somewhere")
}

type failingPolicy struct{}

func (failingPolicy) Name() string { return "failing" }

func (failingPolicy) Apply(headers edge.Headers) error {
	headers.Del("x-frame-options")
	return errors.New("failed")
}

func originResponse() edge.Event {
	return edge.Event{Records: []edge.Record{{CF: edge.CloudFront{
		Config: edge.Config{EventType: edge.StageOriginResponse, RequestID: "req-1"},
		Response: &edge.Response{
			Status:            "200",
			StatusDescription: "OK",
			Headers: edge.Headers{
				"x-frame-options": {{Key: "X-Frame-Options", Value: "DENY"}},
			},
		},
	}}}}
}

func TestRun_Applied(t *testing.T) {
	res := originResponse().Records[0].CF.Response

	result := transform.Run(transform.StripFrameOptions(), res)

	require.True(t, result.Applied)
	require.NoError(t, result.Err)
	assert.False(t, result.Response.Headers.Has("x-frame-options"))
	assert.Equal(t, "200", result.Response.Status)

	// the input is left untouched
	assert.True(t, res.Headers.Has("x-frame-options"))
}

func TestRun_FailurePassesOriginalThrough(t *testing.T) {
	res := originResponse().Records[0].CF.Response

	result := transform.Run(failingPolicy{}, res)

	assert.False(t, result.Applied)
	assert.Error(t, result.Err)
	assert.Same(t, res, result.Response)
	assert.True(t, result.Response.Headers.Has("x-frame-options"))
}

func TestRun_PanicPassesOriginalThrough(t *testing.T) {
	res := originResponse().Records[0].CF.Response

	result := transform.Run(panickingPolicy{}, res)

	assert.False(t, result.Applied)

	var panicErr *transform.PanicError
	require.ErrorAs(t, result.Err, &panicErr)
	assert.Equal(t, "panicking", panicErr.Policy)

	assert.Same(t, res, result.Response)
	assert.False(t, res.Headers.Has("x-half-written"))
}

func TestRun_NilHeaders(t *testing.T) {
	result := transform.Run(transform.AddFrameOptions{}, &edge.Response{Status: "200"})

	require.True(t, result.Applied)
	v, _ := result.Response.Headers.Get("x-frame-options")
	assert.Equal(t, "SAMEORIGIN", v)
}

func TestRun_NilResponse(t *testing.T) {
	result := transform.Run(transform.AddFrameOptions{}, nil)

	assert.ErrorIs(t, result.Err, edge.ErrMissingResponse)
	assert.Nil(t, result.Response)
}

func TestHandler_Handle(t *testing.T) {
	h := transform.NewHandler(transform.AddFrameOptions{}, zaptest.NewLogger(t))

	out, err := h.Handle(context.Background(), originResponse())
	require.NoError(t, err)

	res, ok := out.(*edge.Response)
	require.True(t, ok)
	assert.Equal(t, []string{"SAMEORIGIN"}, res.Headers.Values("x-frame-options"))
}

func TestHandler_Handle_FailureForwardsOriginal(t *testing.T) {
	h := transform.NewHandler(panickingPolicy{}, zaptest.NewLogger(t))

	out, err := h.Handle(context.Background(), originResponse())
	require.NoError(t, err)

	res, ok := out.(*edge.Response)
	require.True(t, ok)
	assert.Equal(t, []string{"DENY"}, res.Headers.Values("x-frame-options"))
	assert.False(t, res.Headers.Has("x-half-written"))
}

func TestHandler_Handle_MissingResponse(t *testing.T) {
	h := transform.NewHandler(transform.AddFrameOptions{}, zaptest.NewLogger(t))

	event := originResponse()
	event.Records[0].CF.Response = nil

	_, err := h.Handle(context.Background(), event)
	assert.ErrorIs(t, err, edge.ErrMissingResponse)
}

func TestHandler_Handle_NoRecords(t *testing.T) {
	h := transform.NewHandler(transform.AddFrameOptions{}, zaptest.NewLogger(t))

	_, err := h.Handle(context.Background(), edge.Event{})
	assert.ErrorIs(t, err, edge.ErrNoRecords)
}
