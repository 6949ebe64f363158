package edge

import (
	"context"
	"errors"
)

var (
	ErrNoRecords       = errors.New("event has no records")
	ErrMissingRequest  = errors.New("event record has no request")
	ErrMissingResponse = errors.New("event record has no response")
)

// Event is the envelope CloudFront sends to a Lambda@Edge function.
type Event struct {
	Records []Record `json:"Records"`
}

// Record is a single CloudFront record. The platform only ever sends one.
type Record struct {
	CF CloudFront `json:"cf"`
}

// CloudFront holds the distribution config and the in-flight request and,
// for response stages, the response.
type CloudFront struct {
	Config   Config    `json:"config"`
	Request  *Request  `json:"request,omitempty"`
	Response *Response `json:"response,omitempty"`
}

// Config describes the distribution and stage that triggered the event.
type Config struct {
	DistributionDomainName string `json:"distributionDomainName,omitempty"`
	DistributionID         string `json:"distributionId,omitempty"`
	EventType              Stage  `json:"eventType"`
	RequestID              string `json:"requestId,omitempty"`
}

// Request is the HTTP request as seen by the edge.
type Request struct {
	ClientIP    string  `json:"clientIp,omitempty"`
	Method      string  `json:"method,omitempty"`
	URI         string  `json:"uri,omitempty"`
	QueryString string  `json:"querystring"`
	Headers     Headers `json:"headers"`
}

// Response is the HTTP response as seen by the edge. Body is only set for
// responses generated at the edge.
type Response struct {
	Status            string  `json:"status"`
	StatusDescription string  `json:"statusDescription,omitempty"`
	Headers           Headers `json:"headers"`
	Body              string  `json:"body,omitempty"`
}

// Handler handles a single edge event. The returned value is either a
// *Request (the request proceeds) or a *Response (the response to send).
type Handler interface {
	Handle(ctx context.Context, event Event) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) (any, error)

func (f HandlerFunc) Handle(ctx context.Context, event Event) (any, error) {
	return f(ctx, event)
}

// CF returns the first record of the event.
func (e Event) CF() (*CloudFront, error) {
	if len(e.Records) == 0 {
		return nil, ErrNoRecords
	}

	return &e.Records[0].CF, nil
}

// Stage returns the lifecycle stage of the event.
func (e Event) Stage() (Stage, error) {
	cf, err := e.CF()
	if err != nil {
		return "", err
	}

	return ParseStage(string(cf.Config.EventType))
}

// WithRequest returns a copy of the event carrying the given request.
func (e Event) WithRequest(req *Request) Event {
	return e.with(func(cf *CloudFront) { cf.Request = req })
}

// WithResponse returns a copy of the event carrying the given response.
func (e Event) WithResponse(res *Response) Event {
	return e.with(func(cf *CloudFront) { cf.Response = res })
}

func (e Event) with(fn func(*CloudFront)) Event {
	records := make([]Record, len(e.Records))
	copy(records, e.Records)

	if len(records) > 0 {
		fn(&records[0].CF)
	}

	return Event{Records: records}
}

// Clone returns a deep copy of the response.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}

	c := *r
	c.Headers = r.Headers.Clone()

	return &c
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}

	c := *r
	c.Headers = r.Headers.Clone()

	return &c
}
