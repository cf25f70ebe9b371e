// Package httpkit is the handler and routing surface modules use
// Modules import this instead of internal/platform/net/http
package httpkit

import (
	"net/http"

	phttp "enrollgate/internal/platform/net/http"
)

type (
	// Envelope is the transport envelope
	Envelope = phttp.Envelope

	// Response is a return-style response
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Created returns a 201 response
func Created(data any) Response { return phttp.Created(data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error returns a response rendered from err
func Error(err error) Response { return phttp.Error(err) }

// Param returns a path parameter
func Param(r *http.Request, key string) string { return phttp.URLParam(r, key) }
