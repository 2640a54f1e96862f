package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true},
		{" 2.50 ", 250, true},
		{"-1", -100, true},
		{"-0.005", -1, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("%q expected invalid argument, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyFromDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1500.00", 150000},
		{"0.1", 10},
		{"19.999", 2000},
		{"33.335", 3334},
		{"-12.345", -1235},
	}
	for _, tc := range cases {
		got := MoneyFromDecimal(decimal.RequireFromString(tc.in))
		if got.Cents != tc.want {
			t.Errorf("MoneyFromDecimal(%s) = %d, want %d", tc.in, got.Cents, tc.want)
		}
	}
}

func TestMoneyMajor(t *testing.T) {
	cases := []struct {
		cents int64
		want  float64
	}{
		{500000, 5000},
		{120000, 1200},
		{1, 0.01},
		{-2550, -25.5},
		{0, 0},
	}
	for _, tc := range cases {
		if got := Cents(tc.cents).Major(); got != tc.want {
			t.Errorf("Cents(%d).Major() = %v, want %v", tc.cents, got, tc.want)
		}
	}
	if got := Cents(123456).String(); got != "1234.56" {
		t.Errorf("String() = %q", got)
	}
}

func TestMoneyJSONIsCents(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Cents(4599)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"amount":4599}` {
		t.Fatalf("unexpected json %s", b)
	}
}
