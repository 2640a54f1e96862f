package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"financas/internal/core"
)

// MaxInputBytes bounds a mutation body or a query's input parameter.
const MaxInputBytes = 1 << 20

var errInputTooLarge = fmt.Errorf("%w: input exceeds %d bytes", core.ErrInvalidArgument, MaxInputBytes)

// ReadInput returns the raw JSON input of a call: the input query parameter
// for GET and the body for everything else. A missing input or a JSON null
// yields nil.
func ReadInput(r *http.Request) ([]byte, error) {
	var raw []byte
	if r.Method == http.MethodGet {
		raw = []byte(r.URL.Query().Get("input"))
		if len(raw) > MaxInputBytes {
			return nil, errInputTooLarge
		}
	} else {
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxInputBytes+1))
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %v", core.ErrInvalidArgument, err)
		}
		if len(body) > MaxInputBytes {
			return nil, errInputTooLarge
		}
		raw = body
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	return raw, nil
}

// DecodeInput unmarshals raw into T. Nil raw gives the zero T, so
// procedures with optional input accept an empty call.
func DecodeInput[T any](raw []byte) (T, error) {
	var in T
	if raw == nil {
		return in, nil
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		if errors.Is(err, core.ErrInvalidArgument) {
			return in, err
		}
		return in, fmt.Errorf("%w: malformed input: %v", core.ErrInvalidArgument, err)
	}
	return in, nil
}

// RequireMethod returns an error response when the request method is not
// method, nil otherwise.
func RequireMethod(r *http.Request, method string) *ResponseBuilder {
	if r.Method == method {
		return nil
	}
	return MethodNotAllowedError(method)
}
