package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Amount
		wantErr bool
	}{
		{"300", 30000, false},
		{"12.5", 1250, false},
		{"0.01", 1, false},
		{"33.33", 3333, false},
		{"1.005", 0, true},
		{"abc", 0, true},
		{"10000000000", 1_000_000_000_000, false},
		{"10000000000.01", 0, true},
		{"-10000000000.01", 0, true},
		{"92233720368547758.07", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmountJSON(t *testing.T) {
	var body struct {
		Price Amount `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price": 100.25}`), &body))
	assert.Equal(t, Amount(10025), body.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"price": "7"}`), &body))
	assert.Equal(t, Amount(700), body.Price)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price": 7.00}`, string(out))
}

func TestNormalizeCurrency(t *testing.T) {
	code, err := NormalizeCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, "USD", code)

	for _, bad := range []string{"", "US", "EURO", "U$D"} {
		_, err := NormalizeCurrency(bad)
		assert.ErrorIs(t, err, ErrBadCurrency, bad)
	}
}
