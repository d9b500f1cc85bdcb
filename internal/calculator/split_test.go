package calculator

import (
	"errors"
	"testing"
)

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name         string
		price        int64
		participants []int64
		wantErr      bool
		want         map[int64]int64
	}{
		{
			name:         "even three-way split",
			price:        30000,
			participants: []int64{1, 2, 3},
			want:         map[int64]int64{1: 10000, 2: 10000, 3: 10000},
		},
		{
			name:         "remainder goes to lowest id",
			price:        100,
			participants: []int64{1, 2, 3},
			want:         map[int64]int64{1: 34, 2: 33, 3: 33},
		},
		{
			name:         "remainder ignores input order",
			price:        100,
			participants: []int64{9, 4, 7},
			want:         map[int64]int64{4: 34, 7: 33, 9: 33},
		},
		{
			name:         "two cents remainder over four",
			price:        1002,
			participants: []int64{5, 6, 7, 8},
			want:         map[int64]int64{5: 251, 6: 251, 7: 250, 8: 250},
		},
		{
			name:         "single participant owes everything",
			price:        1999,
			participants: []int64{42},
			want:         map[int64]int64{42: 1999},
		},
		{
			name:         "price smaller than participant count",
			price:        2,
			participants: []int64{1, 2, 3},
			want:         map[int64]int64{1: 1, 2: 1, 3: 0},
		},
		{
			name:         "no participants should error",
			price:        100,
			participants: nil,
			wantErr:      true,
		},
		{
			name:         "zero price should error",
			price:        0,
			participants: []int64{1},
			wantErr:      true,
		},
		{
			name:         "negative price should error",
			price:        -5,
			participants: []int64{1},
			wantErr:      true,
		},
		{
			name:         "duplicate participant should error",
			price:        100,
			participants: []int64{1, 2, 1},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EqualSplit(tt.price, tt.participants)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSplit) {
					t.Fatalf("EqualSplit() error = %v, want ErrInvalidSplit", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EqualSplit() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("EqualSplit() returned %d shares, want %d", len(got), len(tt.want))
			}
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("share of %d = %d, want %d", id, got[id], want)
				}
			}
		})
	}
}

func TestEqualSplitSumsToPrice(t *testing.T) {
	for n := 1; n <= 25; n++ {
		participants := make([]int64, n)
		for i := range participants {
			participants[i] = int64(i + 1)
		}
		for _, price := range []int64{1, 7, 99, 100, 101, 12345, 999999} {
			shares, err := Shares(price, participants)
			if err != nil {
				t.Fatalf("Shares(%d, n=%d) error: %v", price, n, err)
			}
			var sum int64
			for i, s := range shares {
				sum += s.AmountOwed
				if i > 0 && s.UserID <= shares[i-1].UserID {
					t.Fatalf("shares not ordered by user id: %v", shares)
				}
			}
			if sum != price {
				t.Errorf("Shares(%d, n=%d) sum = %d", price, n, sum)
			}
		}
	}
}
