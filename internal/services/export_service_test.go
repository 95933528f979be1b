package services

import (
	"testing"
	"time"

	"ozon-calc/internal/calculator"
	"ozon-calc/internal/models"
)

func testCalculationResult() *models.CalculationResult {
	input := calculator.Input{
		Price:        1000,
		Weight:       0.5,
		Volume:       1.0,
		TaxRate:      6,
		BuyoutRate:   90,
		DeliveryTime: 40,
		CostPrice:    300,
		OtherCosts:   50,
		MonthlySales: 100,
	}
	result := calculator.Calculate(input, models.CommissionRates{FBOCommission: 15, FBSCommission: 18})
	return &result
}

func TestExportService_BuildWorkbook(t *testing.T) {
	service := NewExportService(newTestLogger())

	f, err := service.BuildWorkbook(testCalculationResult())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Итоги", "Чувствительность FBO", "Выкуп FBO", "Доставка FBO"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Fatalf("expected sheet %q, got idx=%d err=%v", sheet, idx, err)
		}
	}

	header, err := f.GetCellValue("Итоги", "A1")
	if err != nil || header != "Показатель" {
		t.Fatalf("summary header = %q (%v), expected Показатель", header, err)
	}
	priceLabel, _ := f.GetCellValue("Итоги", "A2")
	if priceLabel != "Цена" {
		t.Fatalf("first metric = %q, expected Цена", priceLabel)
	}
	fboPrice, _ := f.GetCellValue("Итоги", "B2")
	if fboPrice != "1000" {
		t.Fatalf("FBO price cell = %q, expected 1000", fboPrice)
	}

	// Блок процентов после 13 метрик и пустой строки.
	percentHeader, _ := f.GetCellValue("Итоги", "A16")
	if percentHeader != "Показатель" {
		t.Fatalf("percent header = %q, expected Показатель", percentHeader)
	}
	feeLabel, _ := f.GetCellValue("Итоги", "A17")
	if feeLabel != "Эффективная комиссия Ozon" {
		t.Fatalf("first percent metric = %q", feeLabel)
	}

	delta, _ := f.GetCellValue("Чувствительность FBO", "A2")
	if delta != "-10" {
		t.Fatalf("first price delta = %q, expected -10", delta)
	}
	buyout, _ := f.GetCellValue("Выкуп FBO", "A2")
	if buyout != "80" {
		t.Fatalf("first buyout rate = %q, expected 80", buyout)
	}
	hours, _ := f.GetCellValue("Доставка FBO", "A2")
	if hours != "29" {
		t.Fatalf("first delivery hours = %q, expected 29", hours)
	}
}

func TestExportService_ExportFilename(t *testing.T) {
	service := NewExportService(newTestLogger())

	now := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	if name := service.ExportFilename(now); name != "ozon_calculation_20250314_150926.xlsx" {
		t.Fatalf("filename = %q", name)
	}
}
