package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/shoes-cart/internal/core/domain"
	"github.com/rl1809/shoes-cart/internal/port"
)

// CatalogHandler serves the storefront API the cart reads stock and products from.
type CatalogHandler struct {
	catalog port.CatalogRepository
	log     *logrus.Logger
}

type errorResponse struct {
	Message string `json:"message"`
}

func NewCatalogHandler(catalog port.CatalogRepository, log *logrus.Logger) *CatalogHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CatalogHandler{catalog: catalog, log: log}
}

// Routes returns the API mux wrapped in request logging.
func (h *CatalogHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /products", h.ListProducts)
	mux.HandleFunc("GET /products/{id}", h.GetProduct)
	mux.HandleFunc("GET /stock/{id}", h.GetStock)
	mux.HandleFunc("PUT /stock/{id}", h.SetStock)
	return &logHandler{log: h.log, next: mux}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productResponse{
		ID:    product.ID,
		Title: product.Title,
		Price: product.Price,
		Image: product.Image,
	})
}

func (h *CatalogHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	stock, err := h.catalog.GetStock(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stock)
}

type setStockRequest struct {
	Amount *int `json:"amount"`
}

// SetStock replaces the stock of a product and drops its cached value.
func (h *CatalogHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req setStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}

	if err := h.catalog.SetStock(r.Context(), id, *req.Amount); err != nil {
		h.writeError(w, r, err)
		return
	}

	requestLogger(r, h.log).WithFields(logrus.Fields{
		"product_id": id,
		"amount":     *req.Amount,
	}).Info("stock updated")
	writeJSON(w, http.StatusOK, domain.Stock{ID: id, Amount: *req.Amount})
}

func (h *CatalogHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// productResponse is a catalog product without the cart amount.
type productResponse struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid product id"})
		return 0, false
	}
	return id, true
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, port.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "not found"})
		return
	case errors.Is(err, port.ErrNegativeStock):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}

	requestLogger(r, h.log).WithError(err).Error("catalog request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
