package razorpay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alma-labs/storefront/internal/infrastructure/razorpay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCreateOrder(t *testing.T) {
	tests := []struct {
		name          string
		handler       func(w http.ResponseWriter, r *http.Request)
		wantErr       bool
		errorContains string
		wantRef       string
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/orders", r.URL.Path)

				username, password, ok := r.BasicAuth()
				assert.True(t, ok)
				assert.Equal(t, "key-id", username)
				assert.Equal(t, "key-secret", password)

				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, float64(250000), body["amount"])
				assert.Equal(t, "INR", body["currency"])
				assert.Equal(t, "order-123", body["receipt"])

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]string{"id": "order_remote_1"})
			},
			wantRef: "order_remote_1",
		},
		{
			name: "gateway rejects",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantErr:       true,
			errorContains: "unexpected status 401",
		},
		{
			name: "empty order id",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]string{"id": ""})
			},
			wantErr:       true,
			errorContains: "empty order id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.handler))
			defer server.Close()

			client := razorpay.NewClient("key-id", "key-secret", razorpay.WithBaseURL(server.URL))
			ref, err := client.CreateOrder(context.Background(), 250000, "INR", "order-123", map[string]string{
				"order_id": "order-123",
			})

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRef, ref)
		})
	}
}

func TestFakeCreateOrderIsSequential(t *testing.T) {
	fake := razorpay.NewFake("rzp_test_key", "fake-secret")

	first, err := fake.CreateOrder(context.Background(), 1000, "INR", "r1", nil)
	require.NoError(t, err)
	second, err := fake.CreateOrder(context.Background(), 1000, "INR", "r2", nil)
	require.NoError(t, err)

	assert.Equal(t, "order_fake_000001", first)
	assert.Equal(t, "order_fake_000002", second)
}
