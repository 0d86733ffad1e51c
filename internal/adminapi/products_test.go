package adminapi

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestValidateProductPayload(t *testing.T) {
	neg := dec("-1")
	big := dec("200")
	small := dec("50")

	tests := []struct {
		name     string
		payload  productPayload
		wantCode string
	}{
		{"valid", productPayload{Price: dec("100"), Stock: 5}, ""},
		{"valid with discount", productPayload{Price: dec("100"), DiscountPrice: &small, Stock: 5}, ""},
		{"negative price", productPayload{Price: neg}, "INVALID_REQUEST"},
		{"negative discount", productPayload{Price: dec("100"), DiscountPrice: &neg}, "INVALID_REQUEST"},
		{"discount above price", productPayload{Price: dec("100"), DiscountPrice: &big}, "INVALID_REQUEST"},
		{"negative stock", productPayload{Price: dec("100"), Stock: -3}, "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := validateProductPayload(&tt.payload)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}
