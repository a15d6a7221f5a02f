package logging

import "context"

type requestIDKey struct{}

// WithRequestID returns a context whose log lines carry request_id=id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// contextArgs appends the request id of ctx, if any, to args.
func contextArgs(ctx context.Context, args []any) []any {
	id := RequestID(ctx)
	if id == "" {
		return args
	}
	return append(args[:len(args):len(args)], "request_id", id)
}
