package mercadopago

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjsport/photostore/internal/payment"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		AccessToken: "test-token",
		BaseURL:     srv.URL,
		BackURLBase: "https://shop.example.com/checkout",
		NotifyURL:   "https://shop.example.com/api/webhooks/mercadopago",
		HTTP:        srv.Client(),
	})
}

func TestCreateSession_Success(t *testing.T) {
	var captured preferenceReq
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]string{
			"id":         "pref-123",
			"init_point": "https://mp.example.com/init/pref-123",
		})
	})

	session, err := client.CreateSession(context.Background(), &payment.SessionRequest{
		OrderID:       "ord-1",
		CustomerName:  "Ana Perez",
		CustomerEmail: "ana@example.com",
		Items: []payment.SessionItem{
			{PhotoID: "p1", Title: "llegada.jpg", UnitPrice: 10},
			{PhotoID: "p2", Title: "podio.jpg", UnitPrice: 15},
		},
		Total: 25,
	})
	require.NoError(t, err)

	assert.Equal(t, "pref-123", session.ID)
	assert.Equal(t, "https://mp.example.com/init/pref-123", session.RedirectURL)

	assert.Equal(t, "ord-1", captured.ExternalReference)
	require.Len(t, captured.Items, 2)
	assert.Equal(t, 1, captured.Items[0].Quantity)
	assert.Equal(t, 10.0, captured.Items[0].UnitPrice)
	assert.Equal(t, "https://shop.example.com/checkout/success", captured.BackURLs.Success)
	assert.Equal(t, "approved", captured.AutoReturn)
}

func TestCreateSession_DiscountedTotalCollapsesItems(t *testing.T) {
	var captured preferenceReq
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{
			"id":         "pref-456",
			"init_point": "https://mp.example.com/init/pref-456",
		})
	})

	_, err := client.CreateSession(context.Background(), &payment.SessionRequest{
		OrderID:      "ord-2",
		CustomerName: "Ana Perez",
		Items: []payment.SessionItem{
			{PhotoID: "p1", Title: "a.jpg", UnitPrice: 10},
			{PhotoID: "p2", Title: "b.jpg", UnitPrice: 10},
			{PhotoID: "p3", Title: "c.jpg", UnitPrice: 10},
		},
		Total: 28.5,
	})
	require.NoError(t, err)

	require.Len(t, captured.Items, 1)
	assert.Equal(t, 28.5, captured.Items[0].UnitPrice)
	assert.Equal(t, "ord-2", captured.Items[0].ID)
}

func TestCreateSession_FloatNoiseKeepsItemized(t *testing.T) {
	var captured preferenceReq
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{
			"id":         "pref-789",
			"init_point": "https://mp.example.com/init/pref-789",
		})
	})

	// 10.1*3 accumulates to 30.299999999999997; the sub-cent difference
	// from the total must not trigger the discount collapse.
	_, err := client.CreateSession(context.Background(), &payment.SessionRequest{
		OrderID:      "ord-3",
		CustomerName: "Ana Perez",
		Items: []payment.SessionItem{
			{PhotoID: "p1", Title: "a.jpg", UnitPrice: 10.1},
			{PhotoID: "p2", Title: "b.jpg", UnitPrice: 10.1},
			{PhotoID: "p3", Title: "c.jpg", UnitPrice: 10.1},
		},
		Total: 30.3,
	})
	require.NoError(t, err)

	require.Len(t, captured.Items, 3)
	assert.Equal(t, "p1", captured.Items[0].ID)
	assert.Equal(t, 10.1, captured.Items[0].UnitPrice)
}

func TestCreateSession_ProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid access token"}`, http.StatusUnauthorized)
	})

	_, err := client.CreateSession(context.Background(), &payment.SessionRequest{OrderID: "ord-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestFetchPayment_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/42", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"id":                 42,
			"status":             "approved",
			"external_reference": "ord-1",
			"transaction_amount": 25.0,
		})
	})

	p, err := client.FetchPayment(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, "42", p.ID)
	assert.Equal(t, "approved", p.Status)
	assert.Equal(t, "ord-1", p.ExternalReference)
	assert.Contains(t, string(p.Detail), "transaction_amount")
}

func TestFetchPayment_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Payment not found"}`, http.StatusNotFound)
	})

	_, err := client.FetchPayment(context.Background(), "999")
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}
