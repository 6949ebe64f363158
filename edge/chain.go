package edge

import (
	"context"
	"fmt"
)

// Chain returns a handler that runs the given handlers in order.
//
// On request stages each handler receives the request returned by its
// predecessor; a handler returning a *Response rejects the request and ends
// the chain. On response stages each handler receives the response returned
// by its predecessor, so the last writer of a header wins.
func Chain(handlers ...Handler) Handler {
	return HandlerFunc(func(ctx context.Context, event Event) (any, error) {
		stage, err := event.Stage()
		if err != nil {
			return nil, err
		}

		cf, err := event.CF()
		if err != nil {
			return nil, err
		}

		if stage.IsRequest() {
			return chainRequest(ctx, handlers, event, cf.Request)
		}

		return chainResponse(ctx, handlers, event, cf.Response)
	})
}

func chainRequest(ctx context.Context, handlers []Handler, event Event, req *Request) (any, error) {
	if req == nil {
		return nil, ErrMissingRequest
	}

	for _, h := range handlers {
		out, err := h.Handle(ctx, event.WithRequest(req))
		if err != nil {
			return nil, err
		}

		switch v := out.(type) {
		case *Request:
			req = v
		case *Response:
			return v, nil
		default:
			return nil, fmt.Errorf("request handler returned %T", out)
		}
	}

	return req, nil
}

func chainResponse(ctx context.Context, handlers []Handler, event Event, res *Response) (any, error) {
	if res == nil {
		return nil, ErrMissingResponse
	}

	for _, h := range handlers {
		out, err := h.Handle(ctx, event.WithResponse(res))
		if err != nil {
			return nil, err
		}

		v, ok := out.(*Response)
		if !ok {
			return nil, fmt.Errorf("response handler returned %T", out)
		}

		res = v
	}

	return res, nil
}
