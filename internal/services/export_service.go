package services

import (
	"fmt"
	"time"

	"ozon-calc/internal/logger"
	"ozon-calc/internal/models"

	"github.com/xuri/excelize/v2"
)

// ExportService формирует Excel отчеты по результатам расчета.
type ExportService struct {
	log *logger.Logger
}

// NewExportService создает сервис экспорта.
func NewExportService(log *logger.Logger) *ExportService {
	return &ExportService{log: log}
}

// ExportFilename возвращает имя файла отчета с текущей меткой времени.
func (s *ExportService) ExportFilename(now time.Time) string {
	return fmt.Sprintf("ozon_calculation_%s.xlsx", now.Format("20060102_150405"))
}

// BuildWorkbook собирает книгу Excel: сводный лист по обеим схемам
// и листы чувствительности по схеме FBO.
func (s *ExportService) BuildWorkbook(result *models.CalculationResult) (*excelize.File, error) {
	f := excelize.NewFile()

	fbo := &result.FBOResults
	fbs := &result.FBSResults

	summarySheet := f.GetSheetName(0)
	if err := f.SetSheetName(summarySheet, "Итоги"); err != nil {
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	summarySheet = "Итоги"

	row := 1
	if err := writeRow(f, summarySheet, row, "Показатель", "FBO", "FBS"); err != nil {
		return nil, err
	}

	metrics := []struct {
		label string
		fbo   float64
		fbs   float64
	}{
		{"Цена", fbo.Price, fbs.Price},
		{"Вознаграждение Ozon", fbo.OzonReward, fbs.OzonReward},
		{"Эквайринг", fbo.Acquiring, fbs.Acquiring},
		{"Обработка и доставка", fbo.ProcessingDelivery, fbs.ProcessingDelivery},
		{"Возвраты и отмены", fbo.ReturnsCancellations, fbs.ReturnsCancellations},
		{"Затраты Ozon всего", fbo.TotalOzonCosts, fbs.TotalOzonCosts},
		{"Прибыль до собственных затрат", fbo.ProfitBeforeCosts, fbs.ProfitBeforeCosts},
		{"Себестоимость", fbo.CostPrice, fbs.CostPrice},
		{"Налог на прибыль", fbo.ProfitTax, fbs.ProfitTax},
		{"Прочие затраты", fbo.OtherCosts, fbs.OtherCosts},
		{"Чистая прибыль за шт", fbo.NetProfitPerUnit, fbs.NetProfitPerUnit},
		{"Прибыль за месяц", fbo.NetProfitTotal, fbs.NetProfitTotal},
		{"Прибыль за год", fbo.AnnualNetProfit, fbs.AnnualNetProfit},
	}
	for _, m := range metrics {
		row++
		if err := writeRow(f, summarySheet, row, m.label, m.fbo, m.fbs); err != nil {
			return nil, err
		}
	}

	// Пустая строка и блок процентных показателей.
	row += 2
	if err := writeRow(f, summarySheet, row, "Показатель", "FBO %", "FBS %"); err != nil {
		return nil, err
	}

	percentMetrics := []struct {
		label string
		fbo   float64
		fbs   float64
	}{
		{"Эффективная комиссия Ozon", fbo.EffectiveOzonFeePercent, fbs.EffectiveOzonFeePercent},
		{"Валовая до налога", fbo.GrossMarginBeforeTaxPercent, fbs.GrossMarginBeforeTaxPercent},
		{"Маржа на шт", fbo.NetProfitPerUnitPercent, fbs.NetProfitPerUnitPercent},
	}
	for _, m := range percentMetrics {
		row++
		if err := writeRow(f, summarySheet, row, m.label, m.fbo, m.fbs); err != nil {
			return nil, err
		}
	}

	if err := s.writePriceSheet(f, fbo); err != nil {
		return nil, err
	}
	if err := s.writeBuyoutSheet(f, fbo); err != nil {
		return nil, err
	}
	if err := s.writeDeliverySheet(f, fbo); err != nil {
		return nil, err
	}

	return f, nil
}

func (s *ExportService) writePriceSheet(f *excelize.File, fbo *models.SchemeResult) error {
	sheet := "Чувствительность FBO"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	if err := writeRow(f, sheet, 1, "Δ% цены", "Цена", "Прибыль/шт", "Маржа %"); err != nil {
		return err
	}
	for i, r := range fbo.Sensitivity.Price {
		if err := writeRow(f, sheet, i+2, r.DeltaPct, r.Price, r.NetProfitPerUnit, r.NetProfitPerUnitPercent); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExportService) writeBuyoutSheet(f *excelize.File, fbo *models.SchemeResult) error {
	sheet := "Выкуп FBO"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	if err := writeRow(f, sheet, 1, "Выкуп %", "Прибыль/шт", "Маржа %"); err != nil {
		return err
	}
	for i, r := range fbo.Sensitivity.Buyout {
		if err := writeRow(f, sheet, i+2, r.BuyoutRate, r.NetProfitPerUnit, r.NetProfitPerUnitPercent); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExportService) writeDeliverySheet(f *excelize.File, fbo *models.SchemeResult) error {
	sheet := "Доставка FBO"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	if err := writeRow(f, sheet, 1, "Часы", "Прибыль/шт", "Маржа %"); err != nil {
		return err
	}
	for i, r := range fbo.Sensitivity.DeliveryTime {
		if err := writeRow(f, sheet, i+2, r.Hours, r.NetProfitPerUnit, r.NetProfitPerUnitPercent); err != nil {
			return err
		}
	}
	return nil
}

// writeRow записывает значения в строку листа начиная с первой колонки.
func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
