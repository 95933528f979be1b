package handlers

import (
	"encoding/json"
	"net/http"

	"ozon-calc/internal/logger"
	"ozon-calc/internal/models"
)

// Максимальный размер загружаемого Excel файла (10 МБ).
const maxImportFileSize = 10 << 20

// CategoryHandler представляет обработчик справочника категорий
type CategoryHandler struct {
	categories CategoryService
	producer   EventProducer
	log        *logger.Logger
}

// NewCategoryHandler создает новый обработчик категорий
func NewCategoryHandler(categories CategoryService, producer EventProducer, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		producer:   producer,
		log:        log,
	}
}

// CreateCategory создает новую категорию
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.categories.CreateCategory(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create category")
		return
	}

	writeJSONResponse(w, http.StatusCreated, category)
}

// ListCategories возвращает список категорий
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r)
	search := r.URL.Query().Get("search")

	categories, err := h.categories.ListCategories(r.Context(), search, limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list categories")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// GetCategory возвращает категорию по ID
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := extractIntIDFromPath(r.URL.Path, "/api/categories/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	category, err := h.categories.GetCategory(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get category")
		return
	}

	writeJSONResponse(w, http.StatusOK, category)
}

// UpdateCategory обновляет категорию
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := extractIntIDFromPath(r.URL.Path, "/api/categories/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req models.UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.categories.UpdateCategory(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update category")
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishCategoryUpdated(category); err != nil {
			h.log.WithError(err).Error("Failed to publish category updated event")
		}
	}

	writeJSONResponse(w, http.StatusOK, category)
}

// DeleteCategory удаляет категорию
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := extractIntIDFromPath(r.URL.Path, "/api/categories/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := h.categories.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete category")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ImportCategories загружает категории из Excel файла (multipart поле file)
func (h *CategoryHandler) ImportCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxImportFileSize); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	result, err := h.categories.ImportFromExcel(r.Context(), file)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to import categories")
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishCategoriesImported(*result); err != nil {
			h.log.WithError(err).Error("Failed to publish categories imported event")
		}
	}

	writeJSONResponse(w, http.StatusOK, result)
}
