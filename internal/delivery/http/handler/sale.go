package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/luischz/inventario_ventas/internal/delivery/http/request"
	"github.com/luischz/inventario_ventas/internal/delivery/http/response"
	"github.com/luischz/inventario_ventas/internal/domain"
	"github.com/luischz/inventario_ventas/internal/pkg/logger"
	"github.com/luischz/inventario_ventas/internal/usecase/sale"
)

// CreateSaleRequest is the JSON body for registering a sale
type CreateSaleRequest struct {
	ProductID int64 `json:"id_producto"`
	Quantity  int   `json:"cantidad"`
}

// SaleHandler handles HTTP requests for sales
type SaleHandler struct {
	service *sale.Service
	logger  *logger.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(service *sale.Service, log *logger.Logger) *SaleHandler {
	return &SaleHandler{
		service: service,
		logger:  log,
	}
}

// Create handles POST /api/ventas
// @Summary Register a sale
// @Description Checks stock, decrements it and records the sale atomically
// @Tags Ventas
// @Accept json
// @Produce json
// @Param sale body CreateSaleRequest true "Sale to register"
// @Success 200 {object} map[string]interface{} "Registered sale"
// @Failure 400 {object} map[string]string "Invalid input or insufficient stock"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 409 {object} map[string]string "Concurrency conflict"
// @Router /ventas [post]
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}

	created, err := h.service.Create(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, created)
}

// List handles GET /api/ventas
// @Summary List sales
// @Tags Ventas
// @Produce json
// @Success 200 {object} map[string]interface{} "Sale list"
// @Router /ventas [get]
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.List(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, sales)
}

// GetByID handles GET /api/ventas/{id}
// @Summary Get a sale by ID
// @Tags Ventas
// @Produce json
// @Param id path integer true "Sale ID"
// @Success 200 {object} map[string]interface{} "Sale"
// @Failure 404 {object} map[string]string "Sale not found"
// @Router /ventas/{id} [get]
func (h *SaleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "ID de venta inválido")
		return
	}

	s, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, s)
}

// Delete handles DELETE /api/ventas/{id}
// @Summary Reverse a sale
// @Description Deletes the sale and restores the sold quantity to the product stock
// @Tags Ventas
// @Produce json
// @Param id path integer true "Sale ID"
// @Success 200 {object} map[string]string "Confirmation message"
// @Failure 404 {object} map[string]string "Sale not found"
// @Failure 409 {object} map[string]string "Concurrency conflict"
// @Router /ventas/{id} [delete]
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "ID de venta inválido")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	response.Message(w, "Venta "+strconv.FormatInt(id, 10)+" eliminada y stock restaurado")
}

// History handles GET /api/ventas/historial/
// @Summary List the sale audit trail
// @Tags Historial
// @Produce json
// @Success 200 {object} map[string]interface{} "Sale history entries"
// @Router /ventas/historial/ [get]
func (h *SaleHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.History(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, entries)
}

// handleError maps service layer errors to HTTP responses
func (h *SaleHandler) handleError(w http.ResponseWriter, err error) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		response.Error(w, http.StatusBadRequest, fmt.Sprintf(
			"Stock insuficiente. Disponible: %d, Solicitado: %d",
			stockErr.Available, stockErr.Requested))
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Venta o producto no encontrado")
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, "Datos de entrada inválidos")
	case errors.Is(err, domain.ErrRetryable):
		response.Error(w, http.StatusConflict, "Conflicto de concurrencia, reintente la operación")
	default:
		h.logger.Error("Internal error in sale handler", err)
		response.Error(w, http.StatusInternalServerError, "Error interno del servidor")
	}
}
