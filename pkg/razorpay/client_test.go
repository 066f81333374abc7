package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/printcraft/printcraft-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.RazorpayConfig {
	return config.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_test_secret",
		BaseURL:   baseURL,
		Timeout:   2 * time.Second,
		Currency:  "INR",
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), config.RazorpayConfig{KeySecret: "s"}, nil)
	assert.ErrorIs(t, err, errKeyIDRequired)

	_, err = NewClient(context.Background(), config.RazorpayConfig{KeyID: "k"}, nil)
	assert.ErrorIs(t, err, errSecretRequired)
}

func TestCreateOrder(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var gotBody createOrderRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(createOrderResponse{
			ID:       "order_ABC123",
			Amount:   gotBody.Amount,
			Currency: gotBody.Currency,
			Receipt:  gotBody.Receipt,
			Status:   "created",
		})
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), testConfig(server.URL), nil)
	require.NoError(t, err)

	result, err := client.CreateOrder(context.Background(), 500000, "INR", "order-receipt-1", map[string]string{"order_id": "x"})
	require.NoError(t, err)

	assert.Equal(t, "/orders", gotPath)
	assert.Equal(t, "rzp_test_key", gotUser)
	assert.Equal(t, "rzp_test_secret", gotPass)
	assert.Equal(t, int64(500000), gotBody.Amount)
	assert.Equal(t, "order_ABC123", result.GatewayOrderID)
	assert.Equal(t, "created", result.Status)
}

func TestCreateOrderRejectsInvalidInput(t *testing.T) {
	client, err := NewClient(context.Background(), testConfig("http://localhost:1"), nil)
	require.NoError(t, err)

	_, err = client.CreateOrder(context.Background(), 0, "INR", "", nil)
	assert.Error(t, err)

	_, err = client.CreateOrder(context.Background(), 100, "", "", nil)
	assert.Error(t, err)
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), testConfig(server.URL), nil)
	require.NoError(t, err)

	_, err = client.CreateOrder(context.Background(), 100, "INR", "", nil)
	assert.ErrorContains(t, err, "status 401")
}

func TestVerifyPaymentSignature(t *testing.T) {
	client, err := NewClient(context.Background(), testConfig("http://localhost:1"), nil)
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("rzp_test_secret"))
	mac.Write([]byte("order_ABC123|pay_XYZ789"))
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, client.VerifyPaymentSignature("order_ABC123", "pay_XYZ789", valid))
	assert.False(t, client.VerifyPaymentSignature("order_ABC123", "pay_XYZ789", "deadbeef"))
	assert.False(t, client.VerifyPaymentSignature("order_other", "pay_XYZ789", valid))
	assert.False(t, client.VerifyPaymentSignature("", "pay_XYZ789", valid))
	assert.False(t, client.VerifyPaymentSignature("order_ABC123", "pay_XYZ789", ""))
}
