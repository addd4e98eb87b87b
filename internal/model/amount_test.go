package model_test

import (
	"encoding/json"
	"testing"

	"paydocs-server/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want model.Amount
	}{
		{"0", 0},
		{"5", 500},
		{"5.5", 550},
		{"5.05", 505},
		{" 12.00 ", 1200},
		{"0.01", 1},
	}

	for _, tt := range tests {
		got, err := model.ParseAmount(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "-1", "+1", "1.234", "abc", "1.", ".5", "1.-5", "99999999999999999999"} {
		_, err := model.ParseAmount(in)
		assert.Error(t, err, in)
	}
}

func TestAmountString(t *testing.T) {
	assert.Equal(t, "0.00", model.Amount(0).String())
	assert.Equal(t, "5.05", model.Amount(505).String())
	assert.Equal(t, "120.00", model.Amount(12000).String())
}

func TestAmountJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Price model.Amount `json:"price"`
	}{Price: 1999})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"19.99"}`, string(data))

	var decoded struct {
		Price model.Amount `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":"3.5"}`), &decoded))
	assert.Equal(t, model.Amount(350), decoded.Price)

	assert.Error(t, json.Unmarshal([]byte(`{"price":3.5}`), &decoded))
}
