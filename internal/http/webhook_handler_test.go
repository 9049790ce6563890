package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjsport/photostore/internal/webhook"
)

type webhookProcessorMock struct {
	err      error
	received []*webhook.Notification
}

func (m *webhookProcessorMock) Process(_ context.Context, n *webhook.Notification) error {
	m.received = append(m.received, n)
	return m.err
}

func webhookRequest(provider string, body []byte) *http.Request {
	request := httptest.NewRequest("POST", "/api/webhooks/"+provider, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("provider", provider)
	return request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, rctx))
}

func TestWebhook_PaymentNotification(t *testing.T) {
	processor := &webhookProcessorMock{}
	handler := NewWebhookHandler(processor, "mercadopago", 5*time.Second)

	body := []byte(`{"type":"payment","data":{"id":"42"}}`)
	recorder := httptest.NewRecorder()

	handler.Handle(recorder, webhookRequest("mercadopago", body))

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp map[string]bool
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.True(t, resp["received"])

	require.Len(t, processor.received, 1)
	assert.Equal(t, "payment", processor.received[0].Type)
	assert.Equal(t, "42", processor.received[0].Data.ID)
}

func TestWebhook_UnknownProvider(t *testing.T) {
	processor := &webhookProcessorMock{}
	handler := NewWebhookHandler(processor, "mercadopago", 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Handle(recorder, webhookRequest("stripe", []byte(`{"type":"payment","data":{"id":"42"}}`)))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Empty(t, processor.received)
}

func TestWebhook_ProcessingFailureReturns500(t *testing.T) {
	processor := &webhookProcessorMock{err: errors.New("db down")}
	handler := NewWebhookHandler(processor, "mercadopago", 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Handle(recorder, webhookRequest("mercadopago", []byte(`{"type":"payment","data":{"id":"42"}}`)))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestWebhook_InvalidJSON(t *testing.T) {
	processor := &webhookProcessorMock{}
	handler := NewWebhookHandler(processor, "mercadopago", 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Handle(recorder, webhookRequest("mercadopago", []byte("{")))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, processor.received)
}

func TestSessionMiddleware_IssuesCookie(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = getSessionID(r.Context())
	})

	recorder := httptest.NewRecorder()
	SessionMiddleware(next).ServeHTTP(recorder, httptest.NewRequest("GET", "/api/cart", nil))

	require.NotEmpty(t, seen)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.Equal(t, seen, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSessionMiddleware_ReusesCookie(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = getSessionID(r.Context())
	})

	request := httptest.NewRequest("GET", "/api/cart", nil)
	request.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "f47ac10b-58cc-4372-a567-0e02b2c3d479"})

	recorder := httptest.NewRecorder()
	SessionMiddleware(next).ServeHTTP(recorder, request)

	assert.Equal(t, "f47ac10b-58cc-4372-a567-0e02b2c3d479", seen)
	assert.Empty(t, recorder.Result().Cookies(), "existing session must not be reissued")
}
