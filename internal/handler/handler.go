// Package handler exposes the pricing service over HTTP: menu listing,
// order quoting and placement, and stock checks.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/anasalhur/sufra-pos/internal/domain/menu"
	"github.com/anasalhur/sufra-pos/internal/domain/order"
)

// Handler serves the public API, delegating business logic to the order
// service and menu repository.
type Handler struct {
	menus        menu.Repository
	orderService *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(menus menu.Repository, orderService *order.Service) *Handler {
	return &Handler{
		menus:        menus,
		orderService: orderService,
	}
}

// Routes mounts the API endpoints on a chi router.
func (h *Handler) Routes(security *Security) http.Handler {
	r := chi.NewRouter()
	r.Use(security.RequireAPIKey)

	r.Get("/menu", h.ListMenu)
	r.Post("/orders/quote", h.QuoteOrder)
	r.Post("/orders", h.PlaceOrder)
	r.Post("/stock/check", h.CheckStock)

	return r
}

// errorResponse is the JSON error envelope for all endpoints.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// writeInternalError logs the error and responds with a generic 500 so
// internal details never leak to clients.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
