package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"ozon-calc/internal/apperror"
	"ozon-calc/internal/calculator"
	"ozon-calc/internal/config"
	"ozon-calc/internal/database"
	"ozon-calc/internal/logger"
	"ozon-calc/internal/models"
	"ozon-calc/internal/redis"

	"github.com/google/uuid"
)

const (
	defaultResultCacheTTL    = 15 * time.Minute
	defaultHistoryLimit      = 50
	cubicCentimetersPerLiter = 1000.0
)

// CalculationService выполняет расчеты юнит-экономики и ведет их историю.
type CalculationService struct {
	db           *database.DB
	redis        *redis.Client
	categories   *CategoryService
	log          *logger.Logger
	resultTTL    time.Duration
	historyLimit int
}

// NewCalculationService создает сервис расчетов.
func NewCalculationService(db *database.DB, redisClient *redis.Client, categories *CategoryService, log *logger.Logger, cfg *config.CalculatorConfig) *CalculationService {
	resultTTL := defaultResultCacheTTL
	historyLimit := defaultHistoryLimit

	if cfg != nil {
		if cfg.ResultCacheTTLMinutes > 0 {
			resultTTL = time.Duration(cfg.ResultCacheTTLMinutes) * time.Minute
		}
		if cfg.HistoryDefaultLimit > 0 {
			historyLimit = cfg.HistoryDefaultLimit
		}
	}

	return &CalculationService{
		db:           db,
		redis:        redisClient,
		categories:   categories,
		log:          log,
		resultTTL:    resultTTL,
		historyLimit: historyLimit,
	}
}

// Calculate выполняет расчет для обеих схем работы.
// Возвращает расчет и признак попадания в кеш: закешированный результат
// не сохраняется в историю повторно.
func (s *CalculationService) Calculate(ctx context.Context, req *models.CalculationRequest) (*models.Calculation, bool, error) {
	volume, err := resolveVolume(req)
	if err != nil {
		return nil, false, err
	}

	rates, err := s.categories.GetCommissionRates(ctx, req.CategoryID)
	if err != nil {
		return nil, false, err
	}

	cacheKey := redis.GenerateKey(redis.KeyPrefixCalculation, requestHash(req))
	if s.redis != nil {
		var cached models.Calculation
		if err := s.redis.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, true, nil
		}
	}

	input := calculator.Input{
		Price:        req.Price,
		Weight:       req.Weight,
		Volume:       volume,
		TaxRate:      req.TaxRate,
		BuyoutRate:   req.BuyoutRate,
		DeliveryTime: req.DeliveryTime,
		AdCostsRate:  req.AdCostsRate,
		CostPrice:    req.CostPrice,
		OtherCosts:   req.OtherCosts,
		MonthlySales: req.MonthlySales,
	}
	result := calculator.Calculate(input, *rates)

	calc := &models.Calculation{
		ID:           uuid.New(),
		CategoryID:   req.CategoryID,
		Price:        req.Price,
		Weight:       req.Weight,
		Volume:       volume,
		Length:       req.Length,
		Width:        req.Width,
		Height:       req.Height,
		TaxRate:      req.TaxRate,
		BuyoutRate:   req.BuyoutRate,
		DeliveryTime: req.DeliveryTime,
		AdCostsRate:  req.AdCostsRate,
		CostPrice:    req.CostPrice,
		OtherCosts:   req.OtherCosts,
		MonthlySales: req.MonthlySales,
		Results:      &result,
		CreatedAt:    time.Now(),
	}

	if err := s.saveCalculation(ctx, calc); err != nil {
		return nil, false, err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, calc, s.resultTTL); err != nil {
			s.log.WithError(err).WithField("key", cacheKey).Warn("Failed to cache calculation result")
		}
	}

	return calc, false, nil
}

// GetCalculation возвращает сохраненный расчет по ID.
func (s *CalculationService) GetCalculation(ctx context.Context, id uuid.UUID) (*models.Calculation, error) {
	query := `
		SELECT id, category_id, price, weight, volume, length, width, height,
		       tax_rate, buyout_rate, delivery_time, ad_costs_rate,
		       cost_price, other_costs, monthly_sales, results, created_at
		FROM calculations
		WHERE id = $1
	`

	calc, err := scanCalculation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.CalculationNotFound(id.String(), err)
		}
		return nil, fmt.Errorf("failed to get calculation: %w", err)
	}
	return calc, nil
}

// ListCalculations возвращает историю расчетов, новые первыми.
func (s *CalculationService) ListCalculations(ctx context.Context, limit, offset int) ([]*models.Calculation, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, category_id, price, weight, volume, length, width, height,
		       tax_rate, buyout_rate, delivery_time, ad_costs_rate,
		       cost_price, other_costs, monthly_sales, results, created_at
		FROM calculations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	defer rows.Close()

	var calculations []*models.Calculation
	for rows.Next() {
		calc, err := scanCalculation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation: %w", err)
		}
		calculations = append(calculations, calc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate calculations: %w", err)
	}
	return calculations, nil
}

func (s *CalculationService) saveCalculation(ctx context.Context, calc *models.Calculation) error {
	resultsJSON, err := json.Marshal(calc.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal calculation results: %w", err)
	}

	query := `
		INSERT INTO calculations (id, category_id, price, weight, volume, length, width, height,
		                          tax_rate, buyout_rate, delivery_time, ad_costs_rate,
		                          cost_price, other_costs, monthly_sales, results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = s.db.ExecContext(ctx, query,
		calc.ID, calc.CategoryID, calc.Price, calc.Weight, calc.Volume,
		calc.Length, calc.Width, calc.Height,
		calc.TaxRate, calc.BuyoutRate, calc.DeliveryTime, calc.AdCostsRate,
		calc.CostPrice, calc.OtherCosts, calc.MonthlySales, resultsJSON, calc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save calculation: %w", err)
	}

	s.log.WithField("calculation_id", calc.ID).Info("Calculation saved")
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCalculation(row rowScanner) (*models.Calculation, error) {
	calc := &models.Calculation{}
	var resultsJSON []byte

	if err := row.Scan(
		&calc.ID, &calc.CategoryID, &calc.Price, &calc.Weight, &calc.Volume,
		&calc.Length, &calc.Width, &calc.Height,
		&calc.TaxRate, &calc.BuyoutRate, &calc.DeliveryTime, &calc.AdCostsRate,
		&calc.CostPrice, &calc.OtherCosts, &calc.MonthlySales, &resultsJSON, &calc.CreatedAt,
	); err != nil {
		return nil, err
	}

	if len(resultsJSON) > 0 {
		calc.Results = &models.CalculationResult{}
		if err := json.Unmarshal(resultsJSON, calc.Results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal calculation results: %w", err)
		}
	}

	return calc, nil
}

// resolveVolume проверяет запрос и возвращает объем товара в литрах.
func resolveVolume(req *models.CalculationRequest) (float64, error) {
	if req.Price < 0.01 {
		return 0, apperror.InvalidInput("price", "must be at least 0.01")
	}
	if req.Weight < 0.001 {
		return 0, apperror.InvalidInput("weight", "must be at least 0.001")
	}
	if req.TaxRate < 0 || req.TaxRate > 100 {
		return 0, apperror.InvalidInput("tax_rate", "must be between 0 and 100")
	}
	if req.BuyoutRate < 0 || req.BuyoutRate > 100 {
		return 0, apperror.InvalidInput("buyout_rate", "must be between 0 and 100")
	}
	if req.AdCostsRate < 0 || req.AdCostsRate > 100 {
		return 0, apperror.InvalidInput("ad_costs_rate", "must be between 0 and 100")
	}
	if req.DeliveryTime < 1 {
		return 0, apperror.InvalidInput("delivery_time", "must be at least 1 hour")
	}
	if req.CostPrice < 0 {
		return 0, apperror.InvalidInput("cost_price", "must not be negative")
	}
	if req.OtherCosts < 0 {
		return 0, apperror.InvalidInput("other_costs", "must not be negative")
	}
	if req.MonthlySales < 1 {
		return 0, apperror.InvalidInput("monthly_sales", "must be at least 1")
	}

	switch req.DimensionMode {
	case models.DimensionModeDimensions:
		if req.Length == nil || req.Width == nil || req.Height == nil {
			return 0, apperror.InvalidInput("dimensions", "length, width and height are required")
		}
		if *req.Length <= 0 || *req.Width <= 0 || *req.Height <= 0 {
			return 0, apperror.InvalidInput("dimensions", "must be positive")
		}
		// Габариты в сантиметрах, объем в литрах.
		return *req.Length * *req.Width * *req.Height / cubicCentimetersPerLiter, nil
	case models.DimensionModeVolume:
		if req.Volume == nil {
			return 0, apperror.InvalidInput("volume", "required for volume mode")
		}
		if *req.Volume <= 0 {
			return 0, apperror.InvalidInput("volume", "must be positive")
		}
		return *req.Volume, nil
	default:
		return 0, apperror.InvalidInput("dimension_mode", "must be either dimensions or volume")
	}
}

// requestHash строит детерминированный ключ кеша по параметрам запроса.
func requestHash(req *models.CalculationRequest) string {
	data, _ := json.Marshal(req)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
