package handlers

import (
	"net/http"

	"ozon-calc/internal/logger"
)

// HistoryHandler представляет обработчик истории расчетов
type HistoryHandler struct {
	calculations CalculationService
	log          *logger.Logger
}

// NewHistoryHandler создает новый обработчик истории
func NewHistoryHandler(calculations CalculationService, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		calculations: calculations,
		log:          log,
	}
}

// ListCalculations возвращает историю расчетов
func (h *HistoryHandler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit, offset := parseLimitOffset(r)

	calculations, err := h.calculations.ListCalculations(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list calculations")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"calculations": calculations,
		"count":        len(calculations),
	})
}

// GetCalculation возвращает сохраненный расчет по ID
func (h *HistoryHandler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id, err := extractUUIDFromPath(r.URL.Path, "/api/calculations/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid calculation ID")
		return
	}

	calc, err := h.calculations.GetCalculation(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get calculation")
		return
	}

	writeJSONResponse(w, http.StatusOK, calc)
}
