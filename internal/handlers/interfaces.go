package handlers

import (
	"context"
	"io"
	"time"

	"ozon-calc/internal/models"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ----- Категории -----

type CategoryService interface {
	CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error)
	GetCategory(ctx context.Context, id int) (*models.Category, error)
	ListCategories(ctx context.Context, search string, limit, offset int) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, id int, req *models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int) error
	ImportFromExcel(ctx context.Context, r io.Reader) (*models.ImportResult, error)
}

// ----- Расчеты -----

type CalculationService interface {
	Calculate(ctx context.Context, req *models.CalculationRequest) (*models.Calculation, bool, error)
	GetCalculation(ctx context.Context, id uuid.UUID) (*models.Calculation, error)
	ListCalculations(ctx context.Context, limit, offset int) ([]*models.Calculation, error)
}

type ExportService interface {
	BuildWorkbook(result *models.CalculationResult) (*excelize.File, error)
	ExportFilename(now time.Time) string
}

// ----- Kafka -----

type EventProducer interface {
	PublishCalculationPerformed(calc *models.Calculation) error
	PublishCategoriesImported(result models.ImportResult) error
	PublishCategoryUpdated(category *models.Category) error
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}
