package services

import (
	"encoding/json"
	"errors"
	"testing"

	"financas/internal/core"
)

func TestAmountUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{`12.34`, 1234, false},
		{`"12.34"`, 1234, false},
		{`"12,34"`, 1234, false},
		{`0.005`, 1, false},
		{`-0.005`, -1, false},
		{`1e2`, 10000, false},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var a Amount
			err := json.Unmarshal([]byte(tt.in), &a)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidArgument) {
					t.Fatalf("expected invalid argument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if a.Cents != tt.want {
				t.Errorf("cents = %d, want %d", a.Cents, tt.want)
			}
		})
	}
}

func TestOptionalDistinguishesNullFromAbsent(t *testing.T) {
	var absent, null, value struct {
		ID Optional[int64] `json:"id"`
	}
	json.Unmarshal([]byte(`{}`), &absent)
	json.Unmarshal([]byte(`{"id":null}`), &null)
	json.Unmarshal([]byte(`{"id":9}`), &value)

	if absent.ID.Set {
		t.Error("absent field must not be set")
	}
	if !null.ID.Set || null.ID.Value != nil {
		t.Errorf("null field: %+v", null.ID)
	}
	if !value.ID.Set || value.ID.Value == nil || *value.ID.Value != 9 {
		t.Errorf("value field: %+v", value.ID)
	}
}
