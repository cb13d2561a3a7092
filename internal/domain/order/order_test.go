package order_test

import (
	"testing"

	"github.com/alma-labs/storefront/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoItems() []order.LineItem {
	return []order.LineItem{
		{ProductID: "P1", Name: "Midnight Rose", UnitPrice: 7499, Quantity: 2},
		{ProductID: "P2", Name: "Mascara Pro", UnitPrice: 2699, Quantity: 1},
	}
}

func TestNewComputesTotalFromSnapshots(t *testing.T) {
	o, err := order.New("o1", "u1", twoItems())
	require.NoError(t, err)

	assert.Equal(t, 7499.0*2+2699, o.TotalPrice)
	assert.Equal(t, o.TotalPrice, o.Total())
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Empty(t, o.RazorpayOrderID)
	assert.Empty(t, o.RazorpayPaymentID)
	assert.Empty(t, o.RazorpaySignature)
}

func TestNewRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		items   []order.LineItem
		wantErr error
	}{
		{
			name:    "no items",
			items:   nil,
			wantErr: order.ErrNoItems,
		},
		{
			name:    "zero quantity",
			items:   []order.LineItem{{ProductID: "P1", UnitPrice: 100, Quantity: 0}},
			wantErr: order.ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			items:   []order.LineItem{{ProductID: "P1", UnitPrice: 100, Quantity: -3}},
			wantErr: order.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := order.New("o1", "u1", tt.items)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAttachGatewayOrderIsSetOnce(t *testing.T) {
	o, err := order.New("o1", "u1", twoItems())
	require.NoError(t, err)

	require.NoError(t, o.AttachGatewayOrder("rzp_order_1"))
	assert.Equal(t, "rzp_order_1", o.RazorpayOrderID)

	err = o.AttachGatewayOrder("rzp_order_2")
	assert.ErrorIs(t, err, order.ErrGatewayRefAttached)
	assert.Equal(t, "rzp_order_1", o.RazorpayOrderID)
}

func TestMarkPaidSetsRefsAndGuardsReplay(t *testing.T) {
	o, err := order.New("o1", "u1", twoItems())
	require.NoError(t, err)
	require.NoError(t, o.AttachGatewayOrder("rzp_order_1"))

	require.NoError(t, o.MarkPaid("pay_1", "sig_1"))
	assert.Equal(t, order.StatusPaid, o.Status)
	assert.Equal(t, "pay_1", o.RazorpayPaymentID)
	assert.Equal(t, "sig_1", o.RazorpaySignature)

	err = o.MarkPaid("pay_2", "sig_2")
	assert.ErrorIs(t, err, order.ErrAlreadyPaid)
	assert.Equal(t, "pay_1", o.RazorpayPaymentID)
}

func TestAdvanceFollowsForwardChain(t *testing.T) {
	tests := []struct {
		name    string
		from    order.Status
		to      order.Status
		wantErr error
	}{
		{name: "paid to processing", from: order.StatusPaid, to: order.StatusProcessing},
		{name: "processing to shipped", from: order.StatusProcessing, to: order.StatusShipped},
		{name: "shipped to delivered", from: order.StatusShipped, to: order.StatusDelivered},
		{name: "pending to paid is reserved for verification", from: order.StatusPending, to: order.StatusPaid, wantErr: order.ErrInvalidTransition},
		{name: "pending to processing skips payment", from: order.StatusPending, to: order.StatusProcessing, wantErr: order.ErrInvalidTransition},
		{name: "no skipping forward", from: order.StatusPaid, to: order.StatusShipped, wantErr: order.ErrInvalidTransition},
		{name: "no regression", from: order.StatusShipped, to: order.StatusProcessing, wantErr: order.ErrInvalidTransition},
		{name: "delivered is terminal", from: order.StatusDelivered, to: order.StatusDelivered, wantErr: order.ErrInvalidTransition},
		{name: "unknown status", from: order.StatusPaid, to: order.Status("cancelled"), wantErr: order.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := order.New("o1", "u1", twoItems())
			require.NoError(t, err)
			o.Status = tt.from

			err = o.Advance(tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, o.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, o.Status)
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	o, err := order.New("o1", "u1", twoItems())
	require.NoError(t, err)

	clone := o.Clone()
	clone.Items[0].Quantity = 99
	clone.Status = order.StatusDelivered

	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, order.StatusPending, o.Status)
}
