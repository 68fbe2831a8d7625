package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/luischz/inventario_ventas/internal/delivery/http/request"
	"github.com/luischz/inventario_ventas/internal/delivery/http/response"
	"github.com/luischz/inventario_ventas/internal/domain"
	"github.com/luischz/inventario_ventas/internal/pkg/logger"
	"github.com/luischz/inventario_ventas/internal/usecase/product"
)

const maxUploadSize = 10 << 20 // 10MB

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service *product.Service
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *product.Service, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  log,
	}
}

// formValue returns the first value of a multipart field and whether the
// field was present at all. Partial updates rely on the distinction.
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// formImage returns the uploaded image file, or nil when none was sent
func formImage(r *http.Request) (io.ReadCloser, error) {
	file, _, err := r.FormFile("imagen")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return file, nil
}

// Create handles POST /api/productos
// @Summary Create a new product
// @Description Register a product with cost, sale price, initial stock and an optional image
// @Tags Productos
// @Accept mpfd
// @Produce json
// @Param nombre formData string true "Product name"
// @Param costo formData number true "Unit cost"
// @Param precio_venta formData number true "Sale price"
// @Param stock formData integer true "Initial stock"
// @Param imagen formData file false "Product image"
// @Success 200 {object} map[string]interface{} "Created product"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /productos [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.Error(w, http.StatusBadRequest, "Formulario inválido")
		return
	}

	name, _ := formValue(r, "nombre")
	costStr, _ := formValue(r, "costo")
	priceStr, _ := formValue(r, "precio_venta")
	stockStr, _ := formValue(r, "stock")

	cost, costErr := strconv.ParseFloat(costStr, 64)
	price, priceErr := strconv.ParseFloat(priceStr, 64)
	stock, stockErr := strconv.Atoi(stockStr)
	if name == "" || costErr != nil || priceErr != nil || stockErr != nil {
		response.Error(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}

	image, err := formImage(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Imagen inválida")
		return
	}
	in := product.CreateInput{
		Name:      name,
		Cost:      cost,
		SalePrice: price,
		Stock:     stock,
	}
	if image != nil {
		defer image.Close()
		in.Image = image
	}

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, created)
}

// List handles GET /api/productos
// @Summary List products
// @Description List all products ordered by ID; activos=true filters out deactivated products
// @Tags Productos
// @Produce json
// @Param activos query boolean false "Only active products"
// @Success 200 {object} map[string]interface{} "Product list"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /productos [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := request.GetBoolQuery(r, "activos", false)

	products, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, products)
}

// GetByID handles GET /api/productos/{id}
// @Summary Get a product by ID
// @Tags Productos
// @Produce json
// @Param id path integer true "Product ID"
// @Success 200 {object} map[string]interface{} "Product"
// @Failure 404 {object} map[string]string "Product not found"
// @Router /productos/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "ID de producto inválido")
		return
	}

	prod, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, prod)
}

// Update handles PUT /api/productos/{id}
// @Summary Partially update a product
// @Description Only the supplied form fields are changed; the rest keep their prior value
// @Tags Productos
// @Accept mpfd
// @Produce json
// @Param id path integer true "Product ID"
// @Param nombre formData string false "Product name"
// @Param costo formData number false "Unit cost"
// @Param precio_venta formData number false "Sale price"
// @Param stock formData integer false "Stock"
// @Param imagen formData file false "Product image"
// @Success 200 {object} map[string]interface{} "Updated product"
// @Failure 400 {object} map[string]string "No fields supplied"
// @Failure 404 {object} map[string]string "Product not found"
// @Router /productos/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "ID de producto inválido")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.Error(w, http.StatusBadRequest, "Formulario inválido")
		return
	}

	var fields domain.ProductUpdate
	if v, ok := formValue(r, "nombre"); ok {
		fields.Name = &v
	}
	if v, ok := formValue(r, "costo"); ok {
		cost, err := strconv.ParseFloat(v, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Datos de entrada inválidos")
			return
		}
		fields.Cost = &cost
	}
	if v, ok := formValue(r, "precio_venta"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Datos de entrada inválidos")
			return
		}
		fields.SalePrice = &price
	}
	if v, ok := formValue(r, "stock"); ok {
		stock, err := strconv.Atoi(v)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Datos de entrada inválidos")
			return
		}
		fields.Stock = &stock
	}

	image, err := formImage(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Imagen inválida")
		return
	}

	if fields.Empty() && image == nil {
		response.Error(w, http.StatusBadRequest, "No se enviaron campos para actualizar")
		return
	}

	in := product.UpdateInput{Fields: fields}
	if image != nil {
		defer image.Close()
		in.Image = image
	}

	updated, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, updated)
}

// Deactivate handles DELETE /api/productos/{id}
// @Summary Deactivate a product
// @Description Marks the product inactive and zeroes its stock; sales history is preserved
// @Tags Productos
// @Produce json
// @Param id path integer true "Product ID"
// @Success 200 {object} map[string]string "Confirmation message"
// @Failure 404 {object} map[string]string "Product not found"
// @Router /productos/{id} [delete]
func (h *ProductHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "ID de producto inválido")
		return
	}

	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	response.Message(w, "Producto "+strconv.FormatInt(id, 10)+" desactivado correctamente")
}

// History handles GET /api/productos/historial/
// @Summary List the product audit trail
// @Tags Historial
// @Produce json
// @Success 200 {object} map[string]interface{} "Product history entries"
// @Router /productos/historial/ [get]
func (h *ProductHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.History(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, entries)
}

// handleError maps service layer errors to HTTP responses
func (h *ProductHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Producto no encontrado")
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, "Datos de entrada inválidos")
	case errors.Is(err, domain.ErrUploadFailed):
		response.Error(w, http.StatusBadGateway, "Error al subir la imagen")
	case errors.Is(err, domain.ErrRetryable):
		response.Error(w, http.StatusConflict, "Conflicto de concurrencia, reintente la operación")
	default:
		h.logger.Error("Internal error in product handler", err)
		response.Error(w, http.StatusInternalServerError, "Error interno del servidor")
	}
}
