package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ozon-calc/internal/logger"
	"ozon-calc/internal/models"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CalculationHandler представляет обработчик расчетов юнит-экономики
type CalculationHandler struct {
	calculations CalculationService
	export       ExportService
	producer     EventProducer
	log          *logger.Logger
}

// NewCalculationHandler создает новый обработчик расчетов
func NewCalculationHandler(calculations CalculationService, export ExportService, producer EventProducer, log *logger.Logger) *CalculationHandler {
	return &CalculationHandler{
		calculations: calculations,
		export:       export,
		producer:     producer,
		log:          log,
	}
}

// Calculate выполняет расчет для обеих схем работы
func (h *CalculationHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	calc, cached, err := h.calculations.Calculate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to perform calculation")
		return
	}

	// Событие публикуется только для новых расчетов.
	if !cached && h.producer != nil {
		if err := h.producer.PublishCalculationPerformed(calc); err != nil {
			h.log.WithError(err).Error("Failed to publish calculation event")
			// Клиенту ошибку не возвращаем, расчет уже выполнен
		}
	}

	writeJSONResponse(w, http.StatusOK, calc)
}

// Export выполняет расчет и отдает результат в виде Excel файла
func (h *CalculationHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	calc, _, err := h.calculations.Calculate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to perform calculation")
		return
	}

	workbook, err := h.export.BuildWorkbook(calc.Results)
	if err != nil {
		h.log.WithError(err).Error("Failed to build Excel workbook")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to build Excel workbook")
		return
	}
	defer workbook.Close()

	filename := h.export.ExportFilename(time.Now())
	w.Header().Set("Content-Type", excelContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := workbook.Write(w); err != nil {
		h.log.WithError(err).Error("Failed to write Excel response")
	}
}
