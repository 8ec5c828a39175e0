package core

import (
	"errors"
	"strings"
	"testing"
)

func TestTypeNormalizedCents(t *testing.T) {
	cases := []struct {
		typ   Type
		cents int64
		want  int64
	}{
		{Credit, 500000, 500000},
		{Debit, 200000, -200000},
		{Debit, 0, 0},
		{Credit, -100, -100}, // negative credit is stored as supplied
	}
	for i, tc := range cases {
		if got := tc.typ.NormalizedCents(tc.cents); got != tc.want {
			t.Fatalf("case %d: %s(%d) = %d, want %d", i, tc.typ, tc.cents, got, tc.want)
		}
	}
}

func TestCreateInputValidate(t *testing.T) {
	cases := []struct {
		name    string
		in      CreateInput
		wantErr error
		field   string
	}{
		{"valid credit", CreateInput{Title: "Salary", Amount: 5000, Type: Credit}, nil, ""},
		{"valid debit", CreateInput{Title: "Rent", Amount: 2000, Type: Debit}, nil, ""},
		{"negative credit allowed", CreateInput{Title: "Refund reversal", Amount: -10, Type: Credit}, nil, ""},
		{"long title allowed", CreateInput{Title: strings.Repeat("a", 5000), Amount: 1, Type: Credit}, nil, ""},
		{"empty title", CreateInput{Title: "", Amount: 1, Type: Credit}, ErrEmptyTitle, "title"},
		{"blank title", CreateInput{Title: "   ", Amount: 1, Type: Credit}, ErrEmptyTitle, "title"},
		{"nan amount", CreateInput{Title: "x", Amount: nan(), Type: Credit}, ErrInvalidAmount, "amount"},
		{"amount beyond cent range", CreateInput{Title: "x", Amount: 1e18, Type: Credit}, ErrInvalidAmount, "amount"},
		{"negative amount beyond cent range", CreateInput{Title: "x", Amount: -1e18, Type: Debit}, ErrInvalidAmount, "amount"},
		{"missing type", CreateInput{Title: "x", Amount: 1}, ErrInvalidType, "type"},
		{"wrong case type", CreateInput{Title: "x", Amount: 1, Type: "Debit"}, ErrInvalidType, "type"},
		{"unknown type", CreateInput{Title: "x", Amount: 1, Type: "transfer"}, ErrInvalidType, "type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tc.field {
				t.Fatalf("expected field %q, got %+v", tc.field, err)
			}
		})
	}
}

func TestCreateInputNormalized(t *testing.T) {
	cases := []struct {
		in   CreateInput
		want int64
	}{
		{CreateInput{Title: "a", Amount: 5000, Type: Credit}, 500000},
		{CreateInput{Title: "a", Amount: 2000, Type: Debit}, -200000},
		{CreateInput{Title: "a", Amount: 12.34, Type: Debit}, -1234},
		{CreateInput{Title: "a", Amount: -20, Type: Credit}, -2000},
	}
	for i, tc := range cases {
		if got := tc.in.Normalized().Cents; got != tc.want {
			t.Fatalf("case %d: got %d, want %d", i, got, tc.want)
		}
	}
}

func TestToCents(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
	}{
		{1, 100},
		{1.23, 123},
		{0.01, 1},
		{12.346, 1235}, // rounds to nearest cent
		{-1.23, -123},
		{0, 0},
	}
	for _, tc := range cases {
		if got := ToCents(tc.in); got != tc.out {
			t.Fatalf("ToCents(%v) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestMoneyUnits(t *testing.T) {
	if got := (Money{Cents: 300000}).Units(); got != 3000 {
		t.Fatalf("Units() = %v, want 3000", got)
	}
	if got := (Money{Cents: -123}).Units(); got != -1.23 {
		t.Fatalf("Units() = %v, want -1.23", got)
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
