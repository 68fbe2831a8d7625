package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/luischz/inventario_ventas/internal/delivery/http/request"
	"github.com/luischz/inventario_ventas/internal/delivery/http/response"
	"github.com/luischz/inventario_ventas/internal/domain"
	"github.com/luischz/inventario_ventas/internal/pkg/logger"
	"github.com/luischz/inventario_ventas/internal/usecase/report"
)

// ReportHandler handles HTTP requests for sales reports
type ReportHandler struct {
	service *report.Service
	logger  *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *report.Service, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  log,
	}
}

// Range handles GET /api/reportes/rango
// @Summary Sales report over a date range
// @Description Totals, top 5 products and per-period breakdown bucketed by dia, semana, mes or anio
// @Tags Reportes
// @Produce json
// @Param desde query string true "Range start (RFC3339 or YYYY-MM-DD)"
// @Param hasta query string true "Range end (RFC3339 or YYYY-MM-DD)"
// @Param periodo query string false "Bucket size: dia, semana, mes, anio" default(mes)
// @Success 200 {object} map[string]interface{} "Range report"
// @Failure 400 {object} map[string]string "Invalid range or period"
// @Router /reportes/rango [get]
func (h *ReportHandler) Range(w http.ResponseWriter, r *http.Request) {
	from, err := request.GetTimeQuery(r, "desde")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Parámetro 'desde' inválido o ausente")
		return
	}
	to, err := request.GetTimeQuery(r, "hasta")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Parámetro 'hasta' inválido o ausente")
		return
	}
	period := request.GetStringQuery(r, "periodo", domain.PeriodMonth)

	rep, err := h.service.RangeReport(r.Context(), from, to, period)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, rep)
}

// Reset handles DELETE /api/reportes/reiniciar
// @Summary Delete all sales within a date range
// @Description Removes the sales in the range; product stock is not restored
// @Tags Reportes
// @Produce json
// @Param desde query string true "Range start (RFC3339 or YYYY-MM-DD)"
// @Param hasta query string true "Range end (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} map[string]string "Deletion summary"
// @Failure 400 {object} map[string]string "Invalid range"
// @Router /reportes/reiniciar [delete]
func (h *ReportHandler) Reset(w http.ResponseWriter, r *http.Request) {
	from, err := request.GetTimeQuery(r, "desde")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Parámetro 'desde' inválido o ausente")
		return
	}
	to, err := request.GetTimeQuery(r, "hasta")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Parámetro 'hasta' inválido o ausente")
		return
	}

	deleted, err := h.service.ResetRange(r.Context(), from, to)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Message(w, fmt.Sprintf("Se eliminaron %d ventas del rango indicado", deleted))
}

// handleError maps service layer errors to HTTP responses
func (h *ReportHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, "Rango o periodo inválido")
	case errors.Is(err, domain.ErrRetryable):
		response.Error(w, http.StatusConflict, "Conflicto de concurrencia, reintente la operación")
	default:
		h.logger.Error("Internal error in report handler", err)
		response.Error(w, http.StatusInternalServerError, "Error interno del servidor")
	}
}
