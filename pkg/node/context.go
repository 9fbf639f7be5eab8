package node

import "context"

type contentOnlyKey struct{}

// WithContentOnly marks ctx so that document params are taken as literal
// content and never opened as file paths. Network hosts set it on every
// request; local hosts leave it unset and keep the path-or-content rule.
func WithContentOnly(ctx context.Context) context.Context {
	return context.WithValue(ctx, contentOnlyKey{}, true)
}

// ContentOnly reports whether ctx was marked by WithContentOnly.
func ContentOnly(ctx context.Context) bool {
	v, _ := ctx.Value(contentOnlyKey{}).(bool)
	return v
}
