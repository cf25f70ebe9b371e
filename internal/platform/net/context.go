// Package net holds transport-neutral request context and the response envelope
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey uint8

const (
	keySubject ctxKey = iota
	keyRole
)

// WithRequestID stores reqID where chi's RequestID middleware would
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// WithSubject annotates ctx with the authenticated subject and its role
func WithSubject(ctx context.Context, subject, role string) context.Context {
	if subject != "" {
		ctx = context.WithValue(ctx, keySubject, subject)
	}
	if role != "" {
		ctx = context.WithValue(ctx, keyRole, role)
	}
	return ctx
}

// RequestID returns the request id on ctx, if any
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// Subject returns the authenticated subject id on ctx, if any
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(keySubject).(string)
	return s
}

// Role returns the authenticated role on ctx, if any
func Role(ctx context.Context) string {
	s, _ := ctx.Value(keyRole).(string)
	return s
}
