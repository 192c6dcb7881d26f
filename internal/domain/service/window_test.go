package service

import (
	"errors"
	"testing"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestComputeRemainingDays(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2024-02-10", 20},
		{"2024-02-29", 1},
		{"2023-02-28", 1},
		{"2023-02-01", 28},
		{"2024-01-31", 1},
		{"2024-12-01", 31},
		{"2024-04-15", 16},
		{"2025-12-31", 1},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := ComputeRemainingDays(mustDate(t, tt.date))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ComputeRemainingDays(%s) = %d; want %d", tt.date, got, tt.want)
			}
		})
	}
}

func TestComputeRemainingDays_WholeYearInRange(t *testing.T) {
	day := mustDate(t, "2024-01-01")
	for i := 0; i < 366; i++ {
		got, err := ComputeRemainingDays(day)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", day.Format("2006-01-02"), err)
		}

		last := time.Date(day.Year(), day.Month()+1, 0, 0, 0, 0, 0, time.UTC)
		want := last.Day() - day.Day() + 1
		if got != want || got < 1 || got > 31 {
			t.Fatalf("%s: got %d; want %d", day.Format("2006-01-02"), got, want)
		}
		day = day.AddDate(0, 0, 1)
	}
}

func TestComputeRemainingDays_IgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2024, 3, 30, 23, 59, 0, 0, time.UTC)
	got, err := ComputeRemainingDays(late)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2 {
		t.Errorf("got %d; want 2", got)
	}
}

func TestComputeRemainingDays_ZeroDate(t *testing.T) {
	_, err := ComputeRemainingDays(time.Time{})
	if !errors.Is(err, types.ErrInvalidDate) {
		t.Fatalf("got %v; want ErrInvalidDate", err)
	}
}

func TestDayCounter_Memoizes(t *testing.T) {
	c := NewDayCounter()
	d := mustDate(t, "2024-02-10")

	for i := 0; i < 3; i++ {
		got, err := c.RemainingDays(d)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 20 {
			t.Fatalf("got %d; want 20", got)
		}
	}
	if c.Len() != 1 {
		t.Errorf("cache size = %d; want 1", c.Len())
	}

	c.Reset()
	if c.Len() != 0 {
		t.Errorf("cache size after reset = %d; want 0", c.Len())
	}
}

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantOK  bool
		wantErr bool
	}{
		{name: "two dates", input: []string{"2024-02-01", "2024-02-10"}, wantOK: true},
		{name: "single date is a no-op", input: []string{"2024-02-01"}},
		{name: "empty is a no-op", input: nil},
		{name: "blank entries ignored", input: []string{"2024-02-01", " "}},
		{name: "three dates", input: []string{"2024-02-01", "2024-02-02", "2024-02-03"}, wantErr: true},
		{name: "unparseable", input: []string{"2024-02-01", "10/02/2024"}, wantErr: true},
		{name: "start after end", input: []string{"2024-02-10", "2024-02-01"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok, err := ParseDateRange(tt.input)
			if tt.wantErr {
				var inputErr *types.InputValidationError
				if !errors.As(err, &inputErr) {
					t.Fatalf("got %v; want InputValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v; want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestNewBillingWindow(t *testing.T) {
	w, err := NewBillingWindow(mustDate(t, "2024-02-01"), mustDate(t, "2024-02-10"), NewDayCounter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.RemainingDays != 20 {
		t.Errorf("RemainingDays = %d; want 20", w.RemainingDays)
	}
	if w.StartDate() != "2024-02-01" || w.EndDate() != "2024-02-10" {
		t.Errorf("dates = %s..%s", w.StartDate(), w.EndDate())
	}
}

func TestDefaultDateRange(t *testing.T) {
	got := DefaultDateRange(time.Date(2024, 5, 17, 15, 4, 0, 0, time.UTC))
	if got[0] != "2024-05-01" || got[1] != "2024-05-17" {
		t.Errorf("got %v", got)
	}
}
