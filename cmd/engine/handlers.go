package main

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
	"github.com/Victor-armando18/storefront-pricing/internal/domain/cart"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure"
	"github.com/Victor-armando18/storefront-pricing/internal/usecase"
)

const headerSessionID = "X-Session-ID"

type couponRequest struct {
	Code  string `json:"code"`
	Apply bool   `json:"apply"`
}

type shippingRequest struct {
	Subtotal decimal.Decimal `json:"subtotal"`
}

type quantityRequest struct {
	Quantity int              `json:"quantity"`
	Weight   *decimal.Decimal `json:"weight,omitempty"`
}

func newRouter(svc *usecase.StorefrontService, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAccept, headerSessionID},
		ExposeHeaders: []string{headerSessionID},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogMethod: true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))
	e.Use(sessionMiddleware)

	e.GET("/products/:id/weights", handleWeightOptions(svc))
	e.POST("/cart/items", handleAddItem(svc))
	e.DELETE("/cart/items/:productId", handleRemoveItem(svc))
	e.PUT("/cart/items/:productId/quantity", handleSetQuantity(svc))
	e.PATCH("/cart", handlePatchCart(svc))
	e.GET("/cart", handleGetCart(svc))
	e.DELETE("/cart", handleClearCart(svc))
	e.POST("/coupons/validate", handleValidateCoupon(svc))
	e.POST("/shipping", handleShipping(svc))
	e.POST("/checkout", handleCheckout(svc))

	return e
}

// sessionMiddleware takes the session id from the request header, or issues
// a new one, and echoes it back.
func sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Request().Header.Get(headerSessionID))
		if id == "" {
			id = usecase.NewSessionID()
		}
		c.Set("session", id)
		c.Response().Header().Set(headerSessionID, id)
		return next(c)
	}
}

func sessionID(c echo.Context) string {
	id, _ := c.Get("session").(string)
	return id
}

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, cart.ErrLineNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, infrastructure.ErrInvalidPatch):
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

func weightParam(c echo.Context) (*decimal.Decimal, error) {
	raw := c.QueryParam("weight")
	if raw == "" {
		return nil, nil
	}
	w, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func handleWeightOptions(svc *usecase.StorefrontService) echo.HandlerFunc {
	return func(c echo.Context) error {
		opts, err := svc.GetWeightOptions(c.Request().Context(), domain.Product{ID: c.Param("id"), SoldByWeight: true})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{"productId": c.Param("id"), "options": opts})
	}
}

func handleAddItem(svc *usecase.StorefrontService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req usecase.AddItemRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid payload")
		}
		line, err := svc.AddItem(c.Request().Context(), sessionID(c), req)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusCreated, line)
	}
}

func handleRemoveItem(svc *usecase.StorefrontService) echo.HandlerFunc {
	return func(c echo.Context) error {
		w, err := weightParam(c)
		if err != nil {
			return badRequest(c, "invalid weight")
		}
		removed, err := svc.RemoveItem(c.Request().Context(), sessionID(c), c.Param("productId"), w)
		if err != nil {
			return respondError(c, err)
		}
		if !removed {
			return respondError(c, cart.ErrLineNotFound)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func handleSetQuantity(svc *usecase.StorefrontService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req quantityRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid payload")
		}
		if err := svc.SetQuantity(c.Request().Context(), sessionID(c), c.Param("productId"), req.Weight, req.Quantity); err != nil {
			return respondError(c, err)
		}
		return handleGetCart(svc)(c)
	}
}

func handlePatchCart(svc *usecase.StorefrontService) echo.HandlerFunc {
	return func(c echo.Context) error {
		patch, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return badRequest(c, "invalid patch request")
		}
		if _, err := svc.PatchCart(c.Request().Context(), sessionID(c), patch); err != nil {
			return respondError(c, err)
		}
		return handleGetCart(svc)(c)
	}
}

func handleGetCart(svc *usecase.StorefrontService) echo.HandlerFunc {
	return func(c echo.Context) error {
		view, err := svc.Cart(c.Request().Context(), sessionID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, view)
	}
}

func handleClearCart(svc *usecase.StorefrontService) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := svc.ClearCart(c.Request().Context(), sessionID(c)); err != nil {
			return respondError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func handleValidateCoupon(svc *usecase.StorefrontService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req couponRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid payload")
		}
		ctx := c.Request().Context()

		var (
			res domain.CouponResult
			err error
		)
		if req.Apply {
			res, err = svc.ApplyCoupon(ctx, sessionID(c), req.Code)
		} else {
			res, err = svc.ValidateCouponCode(ctx, req.Code)
		}
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, res)
	}
}

func handleShipping(svc *usecase.StorefrontService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req shippingRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid payload")
		}
		q, err := svc.CalculateShippingCost(c.Request().Context(), req.Subtotal)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, q)
	}
}

func handleCheckout(svc *usecase.StorefrontService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req usecase.CheckoutRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid payload")
		}
		q, err := svc.Checkout(c.Request().Context(), sessionID(c), req)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, q)
	}
}
