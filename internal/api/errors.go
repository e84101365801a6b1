package api

import (
	"errors"
	"fmt"
)

// FallbackMessage is reported when a failure carries no message of its own.
const FallbackMessage = "something went wrong"

// ErrorKind classifies why a request failed.
type ErrorKind string

const (
	// KindNetwork covers transport failures: DNS, refused connections,
	// cancelled contexts, truncated bodies.
	KindNetwork ErrorKind = "network"
	// KindStatus is a response outside the 2xx range.
	KindStatus ErrorKind = "status"
	// KindDecode is a 2xx response whose body is not valid JSON for the target.
	KindDecode ErrorKind = "decode"
	// KindEncode is a request body that could not be marshalled.
	KindEncode ErrorKind = "encode"
)

// RequestError is returned by every failed call made through a Client.
type RequestError struct {
	Kind       ErrorKind
	Method     string
	URL        string
	RequestID  string
	StatusCode int
	Status     string
	Body       string
	Message    string
	Cause      error
}

func (e *RequestError) Error() string {
	if e.Cause != nil && e.Message != "" {
		return fmt.Sprintf("request error [%s] %s %s: %s (caused by: %v)", e.Kind, e.Method, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("request error [%s] %s %s: %s", e.Kind, e.Method, e.URL, e.Text())
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Text is the human-readable part of the error, without the request context.
func (e *RequestError) Text() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil && e.Cause.Error() != "" {
		return e.Cause.Error()
	}
	return FallbackMessage
}

// maxErrorBody caps how much of a failed response body is kept on the error.
const maxErrorBody = 512

func newNetworkError(method, url, requestID string, cause error) *RequestError {
	return &RequestError{
		Kind:      KindNetwork,
		Method:    method,
		URL:       url,
		RequestID: requestID,
		Cause:     cause,
	}
}

func newStatusError(method, url, requestID string, code int, status string, body []byte) *RequestError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &RequestError{
		Kind:       KindStatus,
		Method:     method,
		URL:        url,
		RequestID:  requestID,
		StatusCode: code,
		Status:     status,
		Body:       string(body),
		Message:    "Error: " + statusText(code, status),
	}
}

func newDecodeError(method, url, requestID string, code int, cause error) *RequestError {
	return &RequestError{
		Kind:       KindDecode,
		Method:     method,
		URL:        url,
		RequestID:  requestID,
		StatusCode: code,
		Message:    "failed to decode response body",
		Cause:      cause,
	}
}

func newEncodeError(method, url string, cause error) *RequestError {
	return &RequestError{
		Kind:    KindEncode,
		Method:  method,
		URL:     url,
		Message: "failed to encode request body",
		Cause:   cause,
	}
}

// IsKind reports whether err is a RequestError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == kind
}

// IsStatus reports whether err is a non-2xx response with the given code.
func IsStatus(err error, code int) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == KindStatus && reqErr.StatusCode == code
}
