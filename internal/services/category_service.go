package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ozon-calc/internal/apperror"
	"ozon-calc/internal/config"
	"ozon-calc/internal/database"
	"ozon-calc/internal/logger"
	"ozon-calc/internal/models"
	"ozon-calc/internal/redis"

	"github.com/lib/pq"
	"github.com/xuri/excelize/v2"
)

const defaultRatesCacheTTL = time.Hour

// CategoryService управляет справочником категорий и комиссиями Ozon.
type CategoryService struct {
	db       *database.DB
	redis    *redis.Client
	log      *logger.Logger
	ratesTTL time.Duration
}

// NewCategoryService создает сервис категорий.
func NewCategoryService(db *database.DB, redisClient *redis.Client, log *logger.Logger, cfg *config.CalculatorConfig) *CategoryService {
	ratesTTL := defaultRatesCacheTTL
	if cfg != nil && cfg.RatesCacheTTLMinutes > 0 {
		ratesTTL = time.Duration(cfg.RatesCacheTTLMinutes) * time.Minute
	}

	return &CategoryService{
		db:       db,
		redis:    redisClient,
		log:      log,
		ratesTTL: ratesTTL,
	}
}

// CreateCategory создает новую категорию.
func (s *CategoryService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	if err := validateCategoryPayload(req.Name, req.FBOCommission, req.FBSCommission); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	category := &models.Category{
		Name:          req.Name,
		CategoryGroup: req.CategoryGroup,
		FBOCommission: req.FBOCommission,
		FBSCommission: req.FBSCommission,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	query := `
		INSERT INTO categories (name, category_group, fbo_commission, fbs_commission, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		category.Name, category.CategoryGroup, category.FBOCommission, category.FBSCommission,
		category.CreatedAt, category.UpdatedAt,
	).Scan(&category.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperror.Conflict("category already exists", err)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.log.WithField("category", category.Name).Info("Category created")
	return category, nil
}

// GetCategory возвращает категорию по ID.
func (s *CategoryService) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	query := `
		SELECT id, name, category_group, fbo_commission, fbs_commission, created_at, updated_at
		FROM categories
		WHERE id = $1
	`

	category := &models.Category{}
	if err := s.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID, &category.Name, &category.CategoryGroup,
		&category.FBOCommission, &category.FBSCommission,
		&category.CreatedAt, &category.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.CategoryNotFound(id, err)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// ListCategories возвращает список категорий с опциональным поиском по названию.
func (s *CategoryService) ListCategories(ctx context.Context, search string, limit, offset int) ([]*models.Category, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, name, category_group, fbo_commission, fbs_commission, created_at, updated_at
		FROM categories
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY category_group NULLS FIRST, name
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(
			&category.ID, &category.Name, &category.CategoryGroup,
			&category.FBOCommission, &category.FBSCommission,
			&category.CreatedAt, &category.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory обновляет категорию и сбрасывает связанные кеши.
func (s *CategoryService) UpdateCategory(ctx context.Context, id int, req *models.UpdateCategoryRequest) (*models.Category, error) {
	if err := validateCategoryPayload(req.Name, req.FBOCommission, req.FBSCommission); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	query := `
		UPDATE categories
		SET name = $1, category_group = $2, fbo_commission = $3, fbs_commission = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(ctx, query,
		req.Name, req.CategoryGroup, req.FBOCommission, req.FBSCommission, time.Now(), id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperror.Conflict("category already exists", err)
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, apperror.CategoryNotFound(id, nil)
	}

	s.invalidateRatesCache(ctx, id)
	return s.GetCategory(ctx, id)
}

// DeleteCategory удаляет категорию вместе с историей ее расчетов.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.CategoryNotFound(id, nil)
	}

	s.invalidateRatesCache(ctx, id)
	return nil
}

// GetCommissionRates возвращает комиссии категории, используя кеш Redis.
func (s *CategoryService) GetCommissionRates(ctx context.Context, id int) (*models.CommissionRates, error) {
	cacheKey := redis.GenerateKey(redis.KeyPrefixRates, strconv.Itoa(id))

	if s.redis != nil {
		var cached models.CommissionRates
		if err := s.redis.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	rates := &models.CommissionRates{
		FBOCommission: category.FBOCommission,
		FBSCommission: category.FBSCommission,
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, rates, s.ratesTTL); err != nil {
			s.log.WithError(err).WithField("key", cacheKey).Warn("Failed to cache commission rates")
		}
	}

	return rates, nil
}

// ImportFromExcel загружает категории из Excel файла.
// Ожидаются колонки: название, группа, комиссия FBO, комиссия FBS.
// Первая строка считается заголовком, некорректные строки пропускаются.
func (s *CategoryService) ImportFromExcel(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.Validation("invalid Excel file", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperror.Validation("failed to read Excel sheet", err)
	}
	if len(rows) < 2 {
		return nil, apperror.Validation("Excel file has no data rows", nil)
	}

	query := `
		INSERT INTO categories (name, category_group, fbo_commission, fbs_commission, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name, category_group)
		DO UPDATE SET fbo_commission = EXCLUDED.fbo_commission,
		              fbs_commission = EXCLUDED.fbs_commission,
		              updated_at = EXCLUDED.updated_at
	`

	result := &models.ImportResult{}
	for _, row := range rows[1:] {
		name, group, fbo, fbs, ok := parseCategoryRow(row)
		if !ok {
			result.Skipped++
			continue
		}

		now := time.Now()
		if _, err := s.db.ExecContext(ctx, query, name, group, fbo, fbs, now, now); err != nil {
			s.log.WithError(err).WithField("category", name).Warn("Failed to import category row")
			result.Skipped++
			continue
		}
		result.Imported++
	}

	if result.Imported > 0 {
		s.invalidateAllRatesCache(ctx)
	}

	s.log.WithFields(map[string]interface{}{
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("Categories imported from Excel")

	return result, nil
}

// parseCategoryRow разбирает строку Excel в поля категории.
func parseCategoryRow(row []string) (name string, group *string, fbo, fbs float64, ok bool) {
	if len(row) < 4 {
		return "", nil, 0, 0, false
	}

	name = strings.TrimSpace(row[0])
	if name == "" {
		return "", nil, 0, 0, false
	}

	if g := strings.TrimSpace(row[1]); g != "" {
		group = &g
	}

	fbo, err := parseCommission(row[2])
	if err != nil {
		return "", nil, 0, 0, false
	}
	fbs, err = parseCommission(row[3])
	if err != nil {
		return "", nil, 0, 0, false
	}

	return name, group, fbo, fbs, true
}

func parseCommission(value string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("commission out of range: %v", v)
	}
	return v, nil
}

func validateCategoryPayload(name string, fbo, fbs float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if fbo < 0 || fbo > 100 {
		return fmt.Errorf("fbo_commission must be between 0 and 100")
	}
	if fbs < 0 || fbs > 100 {
		return fmt.Errorf("fbs_commission must be between 0 and 100")
	}
	return nil
}

// invalidateRatesCache сбрасывает кеш комиссий категории и кеш готовых расчетов.
func (s *CategoryService) invalidateRatesCache(ctx context.Context, id int) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, redis.GenerateKey(redis.KeyPrefixRates, strconv.Itoa(id))); err != nil {
		s.log.WithError(err).WithField("category_id", id).Warn("Failed to invalidate rates cache")
	}
	if err := s.redis.DeleteByPrefix(ctx, redis.KeyPrefixCalculation); err != nil {
		s.log.WithError(err).Warn("Failed to invalidate calculation cache")
	}
}

func (s *CategoryService) invalidateAllRatesCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.DeleteByPrefix(ctx, redis.KeyPrefixRates); err != nil {
		s.log.WithError(err).Warn("Failed to invalidate rates cache")
	}
	if err := s.redis.DeleteByPrefix(ctx, redis.KeyPrefixCalculation); err != nil {
		s.log.WithError(err).Warn("Failed to invalidate calculation cache")
	}
}
