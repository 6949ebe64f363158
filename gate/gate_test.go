package gate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pwa-iframe/edgeshim/edge"
	"github.com/pwa-iframe/edgeshim/gate"
)

func viewerRequest(referer string) edge.Event {
	headers := edge.Headers{}
	headers.Set("Host", "d111111abcdef8.cloudfront.net")
	if referer != "" {
		headers.Set("Referer", referer)
	}

	return edge.Event{Records: []edge.Record{{CF: edge.CloudFront{
		Config:  edge.Config{EventType: edge.StageViewerRequest},
		Request: &edge.Request{Method: "GET", URI: "/index.html", Headers: headers},
	}}}}
}

func TestGate_DisabledApprovesEverything(t *testing.T) {
	g := gate.New(gate.Config{})

	for _, referer := range []string{"", "https://evil.example/", "not a url", "https://pwa.example"} {
		t.Run(referer, func(t *testing.T) {
			req := viewerRequest(referer).Records[0].CF.Request
			assert.Equal(t, gate.Approve, g.Evaluate(req))
		})
	}

	assert.Equal(t, gate.Approve, g.Evaluate(nil))
}

func TestGate_DisabledIgnoresAllowList(t *testing.T) {
	g := gate.New(gate.Config{AllowedReferers: []string{"pwa.example"}})

	req := viewerRequest("https://evil.example/").Records[0].CF.Request
	assert.Equal(t, gate.Approve, g.Evaluate(req))
}

func TestGate_Enabled(t *testing.T) {
	g := gate.New(gate.Config{
		Enabled:         true,
		AllowedReferers: []string{"pwa.example", "https://Other.Example/some/path"},
	})

	tests := []struct {
		referer string
		want    gate.Decision
	}{
		{"https://pwa.example/", gate.Approve},
		{"https://PWA.example:443/page?x=1", gate.Approve},
		{"http://other.example/", gate.Approve},
		{"https://evil.example/", gate.Deny},
		{"https://pwa.example.evil.example/", gate.Deny},
		{"", gate.Deny},
	}

	for _, tt := range tests {
		t.Run(tt.referer, func(t *testing.T) {
			req := viewerRequest(tt.referer).Records[0].CF.Request
			assert.Equal(t, tt.want, g.Evaluate(req))
		})
	}
}

func TestGate_EnabledEmptyListDeniesAll(t *testing.T) {
	g := gate.New(gate.Config{Enabled: true})

	req := viewerRequest("https://pwa.example/").Records[0].CF.Request
	assert.Equal(t, gate.Deny, g.Evaluate(req))
}

func TestHandler_ApprovePassesRequestUnchanged(t *testing.T) {
	h := gate.NewHandler(gate.New(gate.Config{}), zaptest.NewLogger(t))

	event := viewerRequest("https://anything.example/")
	want := *event.Records[0].CF.Request

	out, err := h.Handle(context.Background(), event)
	require.NoError(t, err)

	req, ok := out.(*edge.Request)
	require.True(t, ok)
	assert.Equal(t, want, *req)
}

func TestHandler_DenyReturnsForbidden(t *testing.T) {
	h := gate.NewHandler(gate.New(gate.Config{
		Enabled:         true,
		AllowedReferers: []string{"pwa.example"},
	}), zaptest.NewLogger(t))

	out, err := h.Handle(context.Background(), viewerRequest("https://evil.example/"))
	require.NoError(t, err)

	res, ok := out.(*edge.Response)
	require.True(t, ok)
	assert.Equal(t, "403", res.Status)
	assert.Equal(t, "Forbidden", res.StatusDescription)
}

func TestHandler_MissingRequest(t *testing.T) {
	h := gate.NewHandler(gate.New(gate.Config{}), zaptest.NewLogger(t))

	event := viewerRequest("")
	event.Records[0].CF.Request = nil

	_, err := h.Handle(context.Background(), event)
	assert.ErrorIs(t, err, edge.ErrMissingRequest)
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "approve", gate.Approve.String())
	assert.Equal(t, "deny", gate.Deny.String())
}
