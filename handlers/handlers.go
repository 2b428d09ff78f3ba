package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"guestcart/entities"
	"guestcart/models"
	"guestcart/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// GuestCart is the engine surface the handlers drive.
type GuestCart interface {
	Load(ctx context.Context) (cart entities.Cart, exists bool)
	Add(ctx context.Context, product entities.ProductSnapshot, quantity int) (entities.Cart, error)
	Update(ctx context.Context, itemId entities.ItemID, quantity int) (entities.Cart, error)
	Remove(ctx context.Context, itemId entities.ItemID) (cart entities.Cart, exists bool, err error)
	Clear(ctx context.Context) error
}

type Merger interface {
	MergeGuestCart(ctx context.Context, sessionId string) (merged int, err error)
}

type Handler struct {
	gc  GuestCart
	pc  services.ProductCatalog
	mrg Merger
}

type HandlerParams struct {
	GuestCart GuestCart
	Catalog   services.ProductCatalog
	// Merger is optional; without it the merge route answers 501.
	Merger Merger
}

func NewHandler(params HandlerParams) *Handler {
	return &Handler{
		gc:  params.GuestCart,
		pc:  params.Catalog,
		mrg: params.Merger,
	}
}

func (h *Handler) Routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(h.ErrorHandleMiddleware)
	router.Use(LoggingMiddleware)

	router.HandleFunc("/cart", h.GetCart).Methods("GET")
	router.HandleFunc("/cart", h.ClearCart).Methods("DELETE")
	router.HandleFunc("/cart/items", h.AddToCart).Methods("POST")
	router.HandleFunc("/cart/items/{id}", h.UpdateCartItem).Methods("PUT")
	router.HandleFunc("/cart/items/{id}", h.DeleteFromCart).Methods("DELETE")
	router.HandleFunc("/cart/merge", h.MergeCart).Methods("POST")
	return router
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, exists := h.gc.Load(r.Context())
	writeCart(w, cart, exists)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	req := entities.CartRequest{Quantity: 1}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logrus.WithError(err).Warn("AddToCart: unmarshal failed")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if h.pc == nil {
		http.Error(w, "catalog unavailable", http.StatusServiceUnavailable)
		return
	}

	product, exists, err := h.pc.GetProductSnapshot(r.Context(), req.ProductId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	if !exists {
		WriteErrorResponse(w, models.ErrNotFoundError)
		return
	}

	cart, err := h.gc.Add(r.Context(), product, req.Quantity)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeCart(w, cart, true)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	itemId, err := entities.ParseItemID(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	req := entities.QuantityRequest{}
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logrus.WithError(err).Warn("UpdateCartItem: unmarshal failed")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	cart, err := h.gc.Update(r.Context(), itemId, req.Quantity)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeCart(w, cart, true)
}

func (h *Handler) DeleteFromCart(w http.ResponseWriter, r *http.Request) {
	itemId, err := entities.ParseItemID(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	cart, exists, err := h.gc.Remove(r.Context(), itemId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeCart(w, cart, exists)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.gc.Clear(r.Context()); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MergeCart(w http.ResponseWriter, r *http.Request) {
	if h.mrg == nil {
		http.Error(w, "merge unavailable", http.StatusNotImplemented)
		return
	}
	c, err := r.Cookie("sessionId")
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	merged, err := h.mrg.MergeGuestCart(r.Context(), c.Value)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, entities.MergeResponse{Merged: merged})
}

func writeCart(w http.ResponseWriter, cart entities.Cart, exists bool) {
	resp := entities.CartResponse{}
	if exists {
		resp.Cart = &cart
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Error("Marshal failed")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(jsonData)
}

// middleware
func (h *Handler) ErrorHandleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logrus.WithFields(logrus.Fields{
					"panic":      rec,
					"stacktrace": string(debug.Stack()),
				}).Error("panic occured")
				http.Error(w, "something went wrong, contact with service administration", http.StatusBadGateway)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Info("request handled")
	})
}

func WriteErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrServerError):
		http.Error(w, models.ErrServerError.Error(), http.StatusInternalServerError)
	case errors.Is(err, models.ErrUnautorized):
		http.Error(w, models.ErrUnautorized.Error(), http.StatusUnauthorized)
	case errors.Is(err, models.ErrBadRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFoundError):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrNotAllowed):
		http.Error(w, err.Error(), http.StatusNotAcceptable)
	default:
		logrus.WithError(err).Error("unmapped error")
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
