package cart_test

import (
	"testing"

	"github.com/alma-labs/storefront/internal/domain/cart"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []cart.Line
		want []cart.Line
	}{
		{
			name: "empty cart",
			in:   nil,
			want: []cart.Line{},
		},
		{
			name: "duplicate lines merge in first-seen order",
			in: []cart.Line{
				{ProductID: "P1", Quantity: 1},
				{ProductID: "P2", Quantity: 2},
				{ProductID: "P1", Quantity: 3},
			},
			want: []cart.Line{
				{ProductID: "P1", Quantity: 4},
				{ProductID: "P2", Quantity: 2},
			},
		},
		{
			name: "non-positive quantities dropped",
			in: []cart.Line{
				{ProductID: "P1", Quantity: 0},
				{ProductID: "P2", Quantity: -5},
				{ProductID: "P3", Quantity: 1},
			},
			want: []cart.Line{
				{ProductID: "P3", Quantity: 1},
			},
		},
		{
			name: "empty product id dropped",
			in: []cart.Line{
				{ProductID: "", Quantity: 2},
				{ProductID: "P1", Quantity: 2},
			},
			want: []cart.Line{
				{ProductID: "P1", Quantity: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cart.Normalize(tt.in))
		})
	}
}

func TestTotalQuantity(t *testing.T) {
	lines := []cart.Line{
		{ProductID: "P1", Quantity: 2},
		{ProductID: "P2", Quantity: 3},
	}
	assert.Equal(t, 5, cart.TotalQuantity(lines))
	assert.Equal(t, 0, cart.TotalQuantity(nil))
}
