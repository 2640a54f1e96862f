package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"financas/internal/core"
)

// Error codes carried in the error envelope.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotSupported = "METHOD_NOT_SUPPORTED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// RPCError is the body of a failed call.
type RPCError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error RPCError `json:"error"`
}

// ResponseBuilder assembles one RPC response.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Data wraps v in the success envelope.
func (b *ResponseBuilder) Data(v any) *ResponseBuilder {
	b.body = dataEnvelope{Data: v}
	return b
}

// Error wraps code and message in the error envelope.
func (b *ResponseBuilder) Error(code, message string) *ResponseBuilder {
	b.body = errorEnvelope{Error: RPCError{Code: code, Message: message}}
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_ = json.NewEncoder(w).Encode(b.body)
	}
}

// DataResponse is a 200 carrying v.
func DataResponse(v any) *ResponseBuilder {
	return NewResponse().Data(v)
}

func ErrorResponse(statusCode int, code, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).Error(code, message)
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, CodeBadRequest, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, CodeNotFound, message)
}

func MethodNotAllowedError(allowedMethod string) *ResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, CodeMethodNotSupported, "use "+allowedMethod+" for this procedure").
		Header("Allow", allowedMethod)
}

func InternalServerError() *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, CodeInternal, "internal server error")
}

// FromError maps a service error onto the envelope. Anything that is not a
// known domain error becomes a 500 whose message hides the cause.
func FromError(err error) *ResponseBuilder {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError(err.Error())
	case errors.Is(err, core.ErrInvalidArgument):
		return BadRequestError(err.Error())
	default:
		return InternalServerError()
	}
}
