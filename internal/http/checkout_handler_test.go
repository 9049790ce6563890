package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjsport/photostore/internal/checkout"
	"github.com/mjsport/photostore/internal/domain"
	"github.com/mjsport/photostore/internal/repository"
)

type checkoutServiceMock struct {
	resp      *checkout.SubmitResponse
	submitErr error
	order     *domain.Order
	lastReq   *checkout.SubmitRequest
}

func (m *checkoutServiceMock) Submit(_ context.Context, req *checkout.SubmitRequest) (*checkout.SubmitResponse, error) {
	m.lastReq = req
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return m.resp, nil
}

func (m *checkoutServiceMock) GetOrder(_ context.Context, orderID uuid.UUID) (*domain.Order, error) {
	if m.order == nil || m.order.ID != orderID {
		return nil, repository.ErrOrderNotFound
	}
	return m.order, nil
}

func submitBody(t *testing.T) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"name":  "Ana Perez",
		"email": "ana@example.com",
		"phone": "+541155550100",
		"items": []map[string]string{{"photo_id": "p1"}},
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestCheckout_Success(t *testing.T) {
	svc := &checkoutServiceMock{resp: &checkout.SubmitResponse{
		Success:    true,
		OrderID:    uuid.NewString(),
		PaymentURL: "https://mp.example.com/init/pref-1",
	}}
	handler := NewCheckoutHandler(svc, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/checkout", submitBody(t)), "sess-1")

	handler.Checkout(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp checkout.SubmitResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.PaymentURL)

	require.NotNil(t, svc.lastReq)
	assert.Equal(t, "sess-1", svc.lastReq.SessionID, "session must come from the cookie, not the body")
}

func TestCheckout_ValidationError(t *testing.T) {
	svc := &checkoutServiceMock{submitErr: &checkout.ValidationError{Field: "email", Reason: "must be a valid email address"}}
	handler := NewCheckoutHandler(svc, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/checkout", submitBody(t)), "sess-1")

	handler.Checkout(recorder, request)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "validation_failed", resp.Code)
	assert.Equal(t, "email", resp.Details)
}

func TestCheckout_UpstreamFailure(t *testing.T) {
	svc := &checkoutServiceMock{submitErr: checkout.ErrUpstream}
	handler := NewCheckoutHandler(svc, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/checkout", submitBody(t)), "sess-1")

	handler.Checkout(recorder, request)

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
}

func TestCheckout_InvalidJSON(t *testing.T) {
	handler := NewCheckoutHandler(&checkoutServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/checkout", bytes.NewReader([]byte("{"))), "sess-1")

	handler.Checkout(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func orderRequest(orderID string) *http.Request {
	request := httptest.NewRequest("GET", "/api/orders/"+orderID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("order_id", orderID)
	return request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, rctx))
}

func TestGetOrder_Success(t *testing.T) {
	orderID := uuid.New()
	svc := &checkoutServiceMock{order: &domain.Order{
		ID:            orderID,
		CustomerEmail: "ana@example.com",
		Status:        domain.OrderStatusCompleted,
		PaymentStatus: domain.PaymentStatusPaid,
		TotalAmount:   25,
	}}
	handler := NewCheckoutHandler(svc, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.GetOrder(recorder, orderRequest(orderID.String()))

	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()

	var resp OrderResponseDTO
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, orderID.String(), resp.OrderID)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "paid", resp.PaymentStatus)

	// The public view never leaks contact details.
	assert.NotContains(t, body, "ana@example.com")
}

func TestGetOrder_NotFound(t *testing.T) {
	handler := NewCheckoutHandler(&checkoutServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.GetOrder(recorder, orderRequest(uuid.NewString()))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetOrder_InvalidID(t *testing.T) {
	handler := NewCheckoutHandler(&checkoutServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.GetOrder(recorder, orderRequest("not-a-uuid"))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
