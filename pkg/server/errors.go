// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"errors"
	"net/http"
	"time"

	apperrors "github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/serializer"
	"github.com/google/uuid"
)

// ErrorResponse is the JSON body written for every error returned by the
// server. Details carries structured error context when available.
type ErrorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId"`
	Timestamp time.Time      `json:"timestamp"`
	Retryable bool           `json:"retryable"`
}

// HTTPStatusFromCode maps a structured error code to an HTTP status.
// Unknown codes map to 500 so new codes fail safe.
func HTTPStatusFromCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidRequest, apperrors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeNotRegistered,
		apperrors.ErrCodeNotLoaded, apperrors.ErrCodeModuleNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case apperrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeUnavailable, apperrors.ErrCodeNotEnabled:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// retryableFromCode reports whether a client may reasonably retry the
// request that produced the given code.
func retryableFromCode(code apperrors.ErrorCode) bool {
	switch code {
	case apperrors.ErrCodeTimeout,
		apperrors.ErrCodeUnavailable,
		apperrors.ErrCodeRateLimitExceeded,
		apperrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// mergeDetails combines two detail maps. Keys in b overwrite keys in a.
// Returns nil when both are empty so the details field is omitted.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	merged := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}

// WriteError writes a JSON error response with the given status and code.
// The request id is taken from the request context when present.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code apperrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID := RequestIDFrom(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	serializer.RespondJSON(w, statusCode, ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}

// WriteErrorFromErr writes an error response derived from err. Structured
// errors keep their code, message, and context; the HTTP status and
// retryability follow from the code. Anything else becomes an internal
// error with the fallback message. The error cause is surfaced under the
// "error" detail key.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error,
	fallbackMessage string, details map[string]any) {

	var structured *apperrors.StructuredError
	if errors.As(err, &structured) {
		merged := mergeDetails(structured.Context, details)
		if structured.Cause != nil {
			if merged == nil {
				merged = make(map[string]any, 1)
			}
			merged["error"] = structured.Cause.Error()
		}
		WriteError(w, r, HTTPStatusFromCode(structured.Code), structured.Code,
			structured.Message, retryableFromCode(structured.Code), merged)
		return
	}

	merged := mergeDetails(nil, details)
	if err != nil {
		if merged == nil {
			merged = make(map[string]any, 1)
		}
		merged["error"] = err.Error()
	}
	WriteError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternal,
		fallbackMessage, retryableFromCode(apperrors.ErrCodeInternal), merged)
}
