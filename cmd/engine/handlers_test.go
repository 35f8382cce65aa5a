package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure/currency"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure/jsonlogic"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure/kv"
	"github.com/Victor-armando18/storefront-pricing/internal/usecase"
)

func setupRouter(t *testing.T) *echo.Echo {
	t.Helper()
	threshold := decimal.NewFromInt(500)
	settings := domain.Settings{
		Shipping: domain.ShippingConfig{BaseCost: decimal.NewFromInt(20), FreeThreshold: &threshold},
		Payment:  domain.PaymentSettings{Methods: map[string]bool{"card": true}},
		Offers: []domain.Offer{
			{ID: "summer", DiscountType: domain.DiscountPercentage, DiscountValue: decimal.NewFromInt(10), CouponCode: "SUMMER10", Enabled: true},
		},
	}
	holder := infrastructure.NewSnapshotHolder(infrastructure.StaticSettingsLoader{Settings: settings}, nil)
	svc := usecase.NewStorefrontService(holder, jsonlogic.NewEvaluator(), kv.NewMemoryStore(), currency.NewFormatter("en", "SAR"), nil)
	return newRouter(svc, zap.NewNop())
}

func do(t *testing.T, e *echo.Echo, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if session != "" {
		req.Header.Set(headerSessionID, session)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestWeightOptions(t *testing.T) {
	e := setupRouter(t)
	w := do(t, e, http.MethodGet, "/products/rice/weights", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(headerSessionID))

	var body struct {
		Options []domain.WeightOption `json:"options"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Options, 8)
	assert.Equal(t, "1 كجم", body.Options[7].Label)
}

func TestCartAndCheckoutFlow(t *testing.T) {
	e := setupRouter(t)
	const s = "session-1"

	w := do(t, e, http.MethodPost, "/cart/items", s, map[string]any{
		"product":  map[string]any{"id": "A", "name": "Apple", "price": "100"},
		"quantity": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, s, w.Header().Get(headerSessionID))

	w = do(t, e, http.MethodPost, "/cart/items", s, map[string]any{
		"product":    map[string]any{"id": "rice", "price": "40", "soldByWeight": true},
		"autoWeight": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var line domain.LineItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &line))
	require.NotNil(t, line.SelectedWeight)
	assert.Equal(t, "0.25", line.SelectedWeight.String())

	w = do(t, e, http.MethodPost, "/coupons/validate", s, map[string]any{"code": "summer10", "apply": true})
	require.Equal(t, http.StatusOK, w.Code)
	var coupon domain.CouponResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &coupon))
	assert.True(t, coupon.Valid)

	w = do(t, e, http.MethodGet, "/cart", s, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view usecase.CartView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Items, 2)
	// 200 + 10, minus 10%
	assert.Equal(t, "189", view.Summary.TotalAfterDiscount.String())

	w = do(t, e, http.MethodPost, "/checkout", s, map[string]any{"paymentMethod": "card", "claimed": map[string]string{"grandTotal": "189"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var quote domain.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, "209", quote.GrandTotal.String())
	assert.True(t, quote.ServerDelta)

	w = do(t, e, http.MethodDelete, "/cart/items/rice?weight=0.25", s, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, e, http.MethodDelete, "/cart/items/rice?weight=0.25", s, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, e, http.MethodPut, "/cart/items/A/quantity", s, map[string]any{"quantity": 5})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 5, view.Items[0].Quantity)

	w = do(t, e, http.MethodPatch, "/cart", s, `[{"op":"replace","path":"/items/0/quantity","value":1}]`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 1, view.Items[0].Quantity)

	w = do(t, e, http.MethodDelete, "/cart", s, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, e, http.MethodGet, "/cart", s, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Empty(t, view.Items)
}

func TestErrorMapping(t *testing.T) {
	e := setupRouter(t)

	w := do(t, e, http.MethodPost, "/checkout", "empty", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, e, http.MethodPost, "/shipping", "", map[string]any{"subtotal": "-5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, e, http.MethodPatch, "/cart", "p", `[{"op":"remove","path":"/items/3"}]`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, e, http.MethodPut, "/cart/items/ghost/quantity", "q", map[string]any{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, e, http.MethodDelete, "/cart/items/x?weight=heavy", "q", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, e, http.MethodPost, "/cart/items", "q", `{"product":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShippingAndCoupon(t *testing.T) {
	e := setupRouter(t)

	w := do(t, e, http.MethodPost, "/shipping", "", map[string]any{"subtotal": "600"})
	require.Equal(t, http.StatusOK, w.Code)
	var q domain.ShippingQuote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.True(t, q.Free)
	assert.Equal(t, domain.DefaultEstimatedDays, q.EstimatedDays)

	w = do(t, e, http.MethodPost, "/coupons/validate", "", map[string]any{"code": "nope"})
	require.Equal(t, http.StatusOK, w.Code)
	var res domain.CouponResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Valid)
}
