package models

import "time"

// Category представляет категорию товара с комиссиями для схем FBO и FBS.
type Category struct {
	ID            int       `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	CategoryGroup *string   `json:"category_group,omitempty" db:"category_group"`
	FBOCommission float64   `json:"fbo_commission" db:"fbo_commission"`
	FBSCommission float64   `json:"fbs_commission" db:"fbs_commission"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// CommissionRates хранит пару комиссий категории в процентах.
type CommissionRates struct {
	FBOCommission float64 `json:"fbo_commission"`
	FBSCommission float64 `json:"fbs_commission"`
}

// CreateCategoryRequest описывает запрос на создание категории.
type CreateCategoryRequest struct {
	Name          string  `json:"name"`
	CategoryGroup *string `json:"category_group,omitempty"`
	FBOCommission float64 `json:"fbo_commission"`
	FBSCommission float64 `json:"fbs_commission"`
}

// UpdateCategoryRequest описывает запрос на обновление категории.
type UpdateCategoryRequest struct {
	Name          string  `json:"name"`
	CategoryGroup *string `json:"category_group,omitempty"`
	FBOCommission float64 `json:"fbo_commission"`
	FBSCommission float64 `json:"fbs_commission"`
}

// ImportResult описывает итог импорта категорий из Excel.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
