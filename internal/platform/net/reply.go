package net

import (
	"net/http"

	perr "enrollgate/internal/platform/errors"
)

// Wire is the response envelope shared by every transport
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	ErrorName  string         `json:"error_code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Success builds an envelope around data
func Success(status int, data any, reqID string) Wire {
	return Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		RequestID:  reqID,
		Data:       data,
	}
}

// Error maps err to a status and envelope
func Error(err error, reqID string) (int, Wire) {
	if err == nil {
		return http.StatusOK, Success(http.StatusOK, nil, reqID)
	}
	status, w := perr.HTTP(err)
	name := ""
	if w.Code != perr.ErrorCodeUnknown {
		name = w.Code.String()
	}
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		ErrorName:  name,
		Error:      w.Message,
		Field:      w.Field,
		RequestID:  reqID,
	}
}
