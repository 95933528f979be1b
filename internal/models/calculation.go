package models

import (
	"time"

	"github.com/google/uuid"
)

// Режимы ввода габаритов товара.
const (
	DimensionModeDimensions = "dimensions"
	DimensionModeVolume     = "volume"
)

// CalculationRequest описывает входные параметры расчета юнит-экономики.
type CalculationRequest struct {
	CategoryID    int      `json:"category_id"`
	Price         float64  `json:"price"`
	Weight        float64  `json:"weight"`
	DimensionMode string   `json:"dimension_mode"`
	Length        *float64 `json:"length,omitempty"`
	Width         *float64 `json:"width,omitempty"`
	Height        *float64 `json:"height,omitempty"`
	Volume        *float64 `json:"volume,omitempty"`
	TaxRate       float64  `json:"tax_rate"`
	BuyoutRate    float64  `json:"buyout_rate"`
	DeliveryTime  int      `json:"delivery_time"`
	AdCostsRate   float64  `json:"ad_costs_rate"`
	CostPrice     float64  `json:"cost_price"`
	OtherCosts    float64  `json:"other_costs"`
	MonthlySales  int      `json:"monthly_sales"`
}

// LogisticsBreakdown раскрывает состав стоимости логистики.
type LogisticsBreakdown struct {
	Base                  float64 `json:"base"`
	TimeCoeff             float64 `json:"time_coeff"`
	PricePercentComponent float64 `json:"price_percent_component"`
}

// ReturnsBreakdown раскрывает состав затрат на возвраты.
type ReturnsBreakdown struct {
	Base           float64 `json:"base"`
	NotBuyoutShare float64 `json:"not_buyout_share"`
}

// PriceSensitivityRow — строка чувствительности прибыли к изменению цены.
type PriceSensitivityRow struct {
	DeltaPct                int     `json:"delta_pct"`
	Price                   float64 `json:"price"`
	NetProfitPerUnit        float64 `json:"net_profit_per_unit"`
	NetProfitPerUnitPercent float64 `json:"net_profit_per_unit_percent"`
}

// BuyoutSensitivityRow — строка чувствительности прибыли к проценту выкупа.
type BuyoutSensitivityRow struct {
	BuyoutRate              int     `json:"buyout_rate"`
	NetProfitPerUnit        float64 `json:"net_profit_per_unit"`
	NetProfitPerUnitPercent float64 `json:"net_profit_per_unit_percent"`
}

// DeliverySensitivityRow — строка чувствительности прибыли к времени доставки.
type DeliverySensitivityRow struct {
	Hours                   int     `json:"hours"`
	NetProfitPerUnit        float64 `json:"net_profit_per_unit"`
	NetProfitPerUnitPercent float64 `json:"net_profit_per_unit_percent"`
}

// Sensitivity объединяет таблицы чувствительности по трем осям.
type Sensitivity struct {
	Price        []PriceSensitivityRow    `json:"price"`
	Buyout       []BuyoutSensitivityRow   `json:"buyout"`
	DeliveryTime []DeliverySensitivityRow `json:"delivery_time"`
}

// SchemeResult представляет полный расчет для одной схемы работы (FBO или FBS).
// Затраты продавца приводятся со знаком минус, доходные показатели — с натуральным знаком.
type SchemeResult struct {
	Scheme       string  `json:"scheme"`
	Price        float64 `json:"price"`
	PricePercent float64 `json:"price_percent"`

	OzonReward        float64 `json:"ozon_reward"`
	OzonRewardPercent float64 `json:"ozon_reward_percent"`

	Acquiring        float64 `json:"acquiring"`
	AcquiringPercent float64 `json:"acquiring_percent"`

	ProcessingDelivery        float64 `json:"processing_delivery"`
	ProcessingDeliveryPercent float64 `json:"processing_delivery_percent"`

	ReturnsCancellations        float64 `json:"returns_cancellations"`
	ReturnsCancellationsPercent float64 `json:"returns_cancellations_percent"`

	TotalOzonCosts        float64 `json:"total_ozon_costs"`
	TotalOzonCostsPercent float64 `json:"total_ozon_costs_percent"`

	ProfitBeforeCosts        float64 `json:"profit_before_costs"`
	ProfitBeforeCostsPercent float64 `json:"profit_before_costs_percent"`

	CostPrice        float64 `json:"cost_price"`
	CostPricePercent float64 `json:"cost_price_percent"`

	ProfitTax        float64 `json:"profit_tax"`
	ProfitTaxPercent float64 `json:"profit_tax_percent"`

	OtherCosts        float64 `json:"other_costs"`
	OtherCostsPercent float64 `json:"other_costs_percent"`

	NetProfitPerUnit        float64 `json:"net_profit_per_unit"`
	NetProfitPerUnitPercent float64 `json:"net_profit_per_unit_percent"`

	NetProfitTotal  float64 `json:"net_profit_total"`
	AnnualNetProfit float64 `json:"annual_net_profit"`

	GrossMarginBeforeTax        float64 `json:"gross_margin_before_tax"`
	GrossMarginBeforeTaxPercent float64 `json:"gross_margin_before_tax_percent"`
	EffectiveOzonFeePercent     float64 `json:"effective_ozon_fee_percent"`

	BreakEvenPrice   float64 `json:"break_even_price"`
	TargetPrice10Pct float64 `json:"target_price_10pct"`
	TargetPrice20Pct float64 `json:"target_price_20pct"`

	LogisticsBreakdown LogisticsBreakdown `json:"logistics_breakdown"`
	ReturnsBreakdown   ReturnsBreakdown   `json:"returns_breakdown"`
	Sensitivity        Sensitivity        `json:"sensitivity"`
}

// CalculationResult объединяет расчеты по обеим схемам работы.
type CalculationResult struct {
	FBOResults SchemeResult `json:"fbo_results"`
	FBSResults SchemeResult `json:"fbs_results"`
}

// Calculation представляет сохраненный расчет (история).
type Calculation struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	CategoryID   int                `json:"category_id" db:"category_id"`
	Price        float64            `json:"price" db:"price"`
	Weight       float64            `json:"weight" db:"weight"`
	Volume       float64            `json:"volume" db:"volume"`
	Length       *float64           `json:"length,omitempty" db:"length"`
	Width        *float64           `json:"width,omitempty" db:"width"`
	Height       *float64           `json:"height,omitempty" db:"height"`
	TaxRate      float64            `json:"tax_rate" db:"tax_rate"`
	BuyoutRate   float64            `json:"buyout_rate" db:"buyout_rate"`
	DeliveryTime int                `json:"delivery_time" db:"delivery_time"`
	AdCostsRate  float64            `json:"ad_costs_rate" db:"ad_costs_rate"`
	CostPrice    float64            `json:"cost_price" db:"cost_price"`
	OtherCosts   float64            `json:"other_costs" db:"other_costs"`
	MonthlySales int                `json:"monthly_sales" db:"monthly_sales"`
	Results      *CalculationResult `json:"results,omitempty"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}
