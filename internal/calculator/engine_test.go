package calculator

import (
	"math"
	"reflect"
	"testing"

	"ozon-calc/internal/models"
)

func testInput() Input {
	return Input{
		Price:        1000,
		Weight:       0.5,
		Volume:       1.0,
		TaxRate:      6,
		BuyoutRate:   90,
		DeliveryTime: 40,
		AdCostsRate:  0,
		CostPrice:    300,
		OtherCosts:   50,
		MonthlySales: 100,
	}
}

func testRates() models.CommissionRates {
	return models.CommissionRates{FBOCommission: 15, FBSCommission: 18}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

func TestCalculateReferenceExample(t *testing.T) {
	result := Calculate(testInput(), testRates())
	fbo := result.FBOResults

	if fbo.Scheme != "FBO" {
		t.Fatalf("схема = %q, ожидалось FBO", fbo.Scheme)
	}
	if fbo.Price != 1000 || fbo.PricePercent != 100.00 {
		t.Fatalf("цена = %v (%v%%), ожидалось 1000 (100%%)", fbo.Price, fbo.PricePercent)
	}

	// Вознаграждение: 1000 × 15% = 150.
	if !almostEqual(fbo.OzonReward, -150) || !almostEqual(fbo.OzonRewardPercent, 15) {
		t.Errorf("вознаграждение = %v (%v%%), ожидалось -150 (15%%)", fbo.OzonReward, fbo.OzonRewardPercent)
	}
	// Эквайринг: 1000 × 2% = 20.
	if !almostEqual(fbo.Acquiring, -20) || !almostEqual(fbo.AcquiringPercent, 2) {
		t.Errorf("эквайринг = %v (%v%%), ожидалось -20 (2%%)", fbo.Acquiring, fbo.AcquiringPercent)
	}
	// Логистика: базовый тариф 46 (1 литр, цена выше 300₽), 40 часов
	// дают коэффициент 1.510 и 2.55%% от цены: 46 × 1.51 + 25.5 = 94.96.
	if !almostEqual(fbo.ProcessingDelivery, -94.96) {
		t.Errorf("обработка и доставка = %v, ожидалось -94.96", fbo.ProcessingDelivery)
	}
	// Возвраты: 46 × (1 − 0.90) = 4.60.
	if !almostEqual(fbo.ReturnsCancellations, -4.60) {
		t.Errorf("возвраты = %v, ожидалось -4.60", fbo.ReturnsCancellations)
	}
	// Итого затраты Ozon: 150 + 20 + 94.96 + 4.60 = 269.56.
	if !almostEqual(fbo.TotalOzonCosts, -269.56) {
		t.Errorf("затраты Ozon = %v, ожидалось -269.56", fbo.TotalOzonCosts)
	}
	if !almostEqual(fbo.ProfitBeforeCosts, 730.44) {
		t.Errorf("прибыль до затрат = %v, ожидалось 730.44", fbo.ProfitBeforeCosts)
	}
	// Налог от цены: 1000 × 6% = 60.
	if !almostEqual(fbo.ProfitTax, -60) {
		t.Errorf("налог = %v, ожидалось -60", fbo.ProfitTax)
	}
	// Чистая прибыль: 730.44 − 300 − 60 − 50 = 320.44.
	if !almostEqual(fbo.NetProfitPerUnit, 320.44) {
		t.Errorf("чистая прибыль за шт = %v, ожидалось 320.44", fbo.NetProfitPerUnit)
	}
	if !almostEqual(fbo.NetProfitTotal, 32044) {
		t.Errorf("прибыль за месяц = %v, ожидалось 32044", fbo.NetProfitTotal)
	}
	if !almostEqual(fbo.AnnualNetProfit, 384528) {
		t.Errorf("прибыль за год = %v, ожидалось 384528", fbo.AnnualNetProfit)
	}
	if !almostEqual(fbo.GrossMarginBeforeTax, 380.44) {
		t.Errorf("валовая маржа = %v, ожидалось 380.44", fbo.GrossMarginBeforeTax)
	}
	if !almostEqual(fbo.EffectiveOzonFeePercent, 26.96) {
		t.Errorf("эффективная комиссия = %v%%, ожидалось 26.96%%", fbo.EffectiveOzonFeePercent)
	}

	if fbo.LogisticsBreakdown.Base != 46 || fbo.LogisticsBreakdown.TimeCoeff != 1.510 {
		t.Errorf("разбивка логистики = %+v, ожидался тариф 46 и коэффициент 1.510", fbo.LogisticsBreakdown)
	}
	if !almostEqual(fbo.LogisticsBreakdown.PricePercentComponent, 25.5) {
		t.Errorf("процентная часть логистики = %v, ожидалось 25.5", fbo.LogisticsBreakdown.PricePercentComponent)
	}
	if fbo.ReturnsBreakdown.Base != 46 || fbo.ReturnsBreakdown.NotBuyoutShare != 0.1 {
		t.Errorf("разбивка возвратов = %+v, ожидался тариф 46 и доля невыкупа 0.1", fbo.ReturnsBreakdown)
	}
}

func TestCalculateDeterministic(t *testing.T) {
	first := Calculate(testInput(), testRates())
	second := Calculate(testInput(), testRates())

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results for identical inputs:\n%+v\n%+v", first, second)
	}
}

func TestCalculateFBSUsesOwnCommission(t *testing.T) {
	result := Calculate(testInput(), testRates())
	fbs := result.FBSResults

	if fbs.Scheme != "FBS" {
		t.Fatalf("схема = %q, ожидалось FBS", fbs.Scheme)
	}
	// Вознаграждение: 1000 × 18% = 180.
	if !almostEqual(fbs.OzonReward, -180) {
		t.Errorf("вознаграждение FBS = %v, ожидалось -180", fbs.OzonReward)
	}
	// Разница чистой прибыли между схемами равна разнице комиссий.
	diff := result.FBOResults.NetProfitPerUnit - fbs.NetProfitPerUnit
	if !almostEqual(diff, 30) {
		t.Errorf("разница прибыли FBO−FBS = %v, ожидалось 30", diff)
	}
}

func TestBreakEvenPrice(t *testing.T) {
	in := testInput()
	c := &schemeCalc{
		in:         in,
		commission: 15,
		taxShare:   in.TaxRate / 100,
		buyout:     in.BuyoutRate / 100,
	}

	breakEven := c.findPriceForNet(0)
	res := c.compute(probe{price: breakEven, buyout: c.buyout, hours: in.DeliveryTime})
	if math.Abs(res.netProfit) > 0.01 {
		t.Fatalf("чистая прибыль в точке безубыточности %v = %v, ожидался ноль", breakEven, res.netProfit)
	}
}

func TestTargetPriceReachesMargin(t *testing.T) {
	in := testInput()
	c := &schemeCalc{
		in:         in,
		commission: 15,
		taxShare:   in.TaxRate / 100,
		buyout:     in.BuyoutRate / 100,
	}

	for _, target := range []float64{10, 20} {
		price := c.findPriceForMargin(target)
		res := c.compute(probe{price: price, buyout: c.buyout, hours: in.DeliveryTime})
		margin := res.netProfit / price * 100
		if math.Abs(margin-target) > 0.05 {
			t.Errorf("маржа при цене %v = %v%%, ожидалось %v%%", price, margin, target)
		}
	}
}

func TestSensitivityTables(t *testing.T) {
	result := Calculate(testInput(), testRates())
	fbo := result.FBOResults
	sens := fbo.Sensitivity

	if len(sens.Price) != 5 || len(sens.Buyout) != 4 || len(sens.DeliveryTime) != 5 {
		t.Fatalf("размеры таблиц чувствительности = (%d, %d, %d), ожидалось (5, 4, 5)",
			len(sens.Price), len(sens.Buyout), len(sens.DeliveryTime))
	}

	// Нулевая дельта цены совпадает с основным расчетом.
	base := sens.Price[2]
	if base.DeltaPct != 0 || !almostEqual(base.Price, 1000) || !almostEqual(base.NetProfitPerUnit, fbo.NetProfitPerUnit) {
		t.Errorf("строка нулевой дельты = %+v, ожидалась прибыль %v при цене 1000", base, fbo.NetProfitPerUnit)
	}

	// Текущий процент выкупа 90 совпадает с основным расчетом.
	for _, row := range sens.Buyout {
		if row.BuyoutRate == 90 && !almostEqual(row.NetProfitPerUnit, fbo.NetProfitPerUnit) {
			t.Errorf("строка выкупа 90%% = %+v, ожидалась прибыль %v", row, fbo.NetProfitPerUnit)
		}
	}

	// Прибыль растет с ростом цены.
	if sens.Price[0].NetProfitPerUnit >= sens.Price[4].NetProfitPerUnit {
		t.Errorf("прибыль при −10%% (%v) не меньше прибыли при +10%% (%v)",
			sens.Price[0].NetProfitPerUnit, sens.Price[4].NetProfitPerUnit)
	}
	// Прибыль растет с ростом процента выкупа.
	if sens.Buyout[0].NetProfitPerUnit >= sens.Buyout[3].NetProfitPerUnit {
		t.Errorf("прибыль при выкупе 80%% (%v) не меньше прибыли при 95%% (%v)",
			sens.Buyout[0].NetProfitPerUnit, sens.Buyout[3].NetProfitPerUnit)
	}
	// Прибыль убывает с ростом времени доставки.
	if sens.DeliveryTime[0].NetProfitPerUnit <= sens.DeliveryTime[4].NetProfitPerUnit {
		t.Errorf("прибыль при 29 часах (%v) не больше прибыли при 61 часе (%v)",
			sens.DeliveryTime[0].NetProfitPerUnit, sens.DeliveryTime[4].NetProfitPerUnit)
	}
}

func TestCalculateZeroPrice(t *testing.T) {
	in := testInput()
	in.Price = 0
	result := Calculate(in, testRates())
	fbo := result.FBOResults

	// Проценты от нулевой цены не считаются.
	if fbo.OzonRewardPercent != 0 || fbo.TotalOzonCostsPercent != 0 || fbo.NetProfitPerUnitPercent != 0 {
		t.Fatalf("проценты при нулевой цене = (%v, %v, %v), ожидались нули",
			fbo.OzonRewardPercent, fbo.TotalOzonCostsPercent, fbo.NetProfitPerUnitPercent)
	}
	if math.IsNaN(fbo.NetProfitPerUnit) || math.IsInf(fbo.NetProfitPerUnit, 0) {
		t.Fatalf("чистая прибыль при нулевой цене = %v", fbo.NetProfitPerUnit)
	}
}

func TestCalculateFullBuyout(t *testing.T) {
	in := testInput()
	in.BuyoutRate = 100
	result := Calculate(in, testRates())

	if result.FBOResults.ReturnsCancellations != 0 {
		t.Fatalf("возвраты при 100%% выкупе = %v, ожидался ноль", result.FBOResults.ReturnsCancellations)
	}
	if result.FBOResults.ReturnsBreakdown.NotBuyoutShare != 0 {
		t.Fatalf("доля невыкупа при 100%% выкупе = %v, ожидался ноль", result.FBOResults.ReturnsBreakdown.NotBuyoutShare)
	}
}
