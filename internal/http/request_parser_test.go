package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"financas/internal/core"
)

func TestReadInput(t *testing.T) {
	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{
			name: "query input",
			req:  httptest.NewRequest(http.MethodGet, "/rpc/x.y?input="+url.QueryEscape(`{"days":7}`), nil),
			want: `{"days":7}`,
		},
		{
			name: "query without input",
			req:  httptest.NewRequest(http.MethodGet, "/rpc/x.y", nil),
			want: "",
		},
		{
			name: "body",
			req:  httptest.NewRequest(http.MethodPost, "/rpc/x.y", strings.NewReader(` {"id":3} `)),
			want: `{"id":3}`,
		},
		{
			name: "null body",
			req:  httptest.NewRequest(http.MethodPost, "/rpc/x.y", strings.NewReader("null")),
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := ReadInput(tt.req)
			if err != nil {
				t.Fatal(err)
			}
			if string(raw) != tt.want {
				t.Errorf("input = %q, want %q", raw, tt.want)
			}
			if tt.want == "" && raw != nil {
				t.Error("missing input must be nil")
			}
		})
	}
}

func TestReadInputTooLarge(t *testing.T) {
	body := strings.NewReader(strings.Repeat(" ", MaxInputBytes+10))
	req := httptest.NewRequest(http.MethodPost, "/rpc/x.y", body)

	if _, err := ReadInput(req); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestDecodeInput(t *testing.T) {
	type in struct {
		ID int64 `json:"id"`
	}

	got, err := DecodeInput[in](nil)
	if err != nil || got.ID != 0 {
		t.Fatalf("nil input: %+v, %v", got, err)
	}

	got, err = DecodeInput[in]([]byte(`{"id":42,"extra":true}`))
	if err != nil || got.ID != 42 {
		t.Fatalf("valid input: %+v, %v", got, err)
	}

	if _, err := DecodeInput[in]([]byte(`{"id":"x"}`)); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("type mismatch: %v", err)
	}
	if _, err := DecodeInput[in]([]byte(`{`)); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("malformed: %v", err)
	}
}

func TestRequireMethod(t *testing.T) {
	get := httptest.NewRequest(http.MethodGet, "/", nil)
	if RequireMethod(get, http.MethodGet) != nil {
		t.Error("GET should pass")
	}
	if RequireMethod(get, http.MethodPost) == nil {
		t.Error("GET on a mutation should fail")
	}
}
