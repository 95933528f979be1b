package calculator

import (
	"math"

	"ozon-calc/internal/models"
)

// Ставка эквайринга в процентах от цены товара.
const acquiringRate = 2.0

// Input содержит входные параметры расчета. Ставки задаются в процентах,
// объем — в литрах.
type Input struct {
	Price        float64
	Weight       float64
	Volume       float64
	TaxRate      float64
	BuyoutRate   float64
	DeliveryTime int
	AdCostsRate  float64
	CostPrice    float64
	OtherCosts   float64
	MonthlySales int
}

// Calculate выполняет расчет юнит-экономики для обеих схем работы.
func Calculate(in Input, rates models.CommissionRates) models.CalculationResult {
	return models.CalculationResult{
		FBOResults: calculateScheme(in, rates.FBOCommission, "FBO"),
		FBSResults: calculateScheme(in, rates.FBSCommission, "FBS"),
	}
}

// probe описывает параметры одного пробного расчета: цена и переопределения
// процента выкупа (доля, 0..1) и времени доставки для таблиц чувствительности.
type probe struct {
	price  float64
	buyout float64
	hours  int
}

// netResult — промежуточный результат пробного расчета без округления.
type netResult struct {
	netProfit          float64
	totalOzonCosts     float64
	profitBeforeCosts  float64
	baseLogistics      float64
	coeff              float64
	pricePercent       float64
	priceComponent     float64
	processingDelivery float64
	returns            float64
}

type schemeCalc struct {
	in         Input
	commission float64
	taxShare   float64
	buyout     float64
}

// compute пересчитывает экономику единицы товара для произвольной цены
// и переопределенных параметров. Используется и для основного расчета,
// и для поиска целевых цен, и для таблиц чувствительности.
func (c *schemeCalc) compute(p probe) netResult {
	reward := p.price * c.commission / 100
	acquiring := p.price * acquiringRate / 100

	base := baseLogistics(p.price, c.in.Volume)
	coeff, pricePct := deliveryTimeAdjustments(p.hours)
	priceComponent := p.price * pricePct / 100
	processing := base*coeff + priceComponent

	notBuyout := 1 - p.buyout
	if notBuyout < 0 {
		notBuyout = 0
	}
	returns := base * notBuyout

	totalOzonCosts := reward + acquiring + processing + returns
	profitBefore := p.price - totalOzonCosts
	tax := p.price * c.taxShare
	netProfit := profitBefore - c.in.CostPrice - tax - c.in.OtherCosts

	return netResult{
		netProfit:          netProfit,
		totalOzonCosts:     totalOzonCosts,
		profitBeforeCosts:  profitBefore,
		baseLogistics:      base,
		coeff:              coeff,
		pricePercent:       pricePct,
		priceComponent:     priceComponent,
		processingDelivery: processing,
		returns:            returns,
	}
}

// findPriceForNet ищет бисекцией цену, при которой чистая прибыль за штуку
// равна target.
func (c *schemeCalc) findPriceForNet(target float64) float64 {
	low := 0.01
	high := math.Max(c.in.Price*2, 1000)
	for i := 0; i < 40; i++ {
		mid := (low + high) / 2
		res := c.compute(probe{price: mid, buyout: c.buyout, hours: c.in.DeliveryTime})
		if res.netProfit > target {
			high = mid
		} else {
			low = mid
		}
	}
	return (low + high) / 2
}

// findPriceForMargin ищет бисекцией цену, при которой маржа чистой прибыли
// от пробной цены достигает target процентов.
func (c *schemeCalc) findPriceForMargin(target float64) float64 {
	low := 0.01
	high := math.Max(c.in.Price*2, 1000)
	for i := 0; i < 40; i++ {
		mid := (low + high) / 2
		res := c.compute(probe{price: mid, buyout: c.buyout, hours: c.in.DeliveryTime})
		var margin float64
		if mid != 0 {
			margin = res.netProfit / mid * 100
		}
		if margin >= target {
			high = mid
		} else {
			low = mid
		}
	}
	return (low + high) / 2
}

func calculateScheme(in Input, commission float64, scheme string) models.SchemeResult {
	c := &schemeCalc{
		in:         in,
		commission: commission,
		taxShare:   in.TaxRate / 100,
		buyout:     in.BuyoutRate / 100,
	}

	current := c.compute(probe{price: in.Price, buyout: c.buyout, hours: in.DeliveryTime})

	reward := in.Price * commission / 100
	acquiring := in.Price * acquiringRate / 100
	profitTax := in.Price * c.taxShare

	netProfitTotal := current.netProfit * float64(in.MonthlySales)
	annualNetProfit := netProfitTotal * 12
	grossMarginBeforeTax := current.profitBeforeCosts - in.CostPrice - in.OtherCosts

	// Проценты рассчитываются от текущей цены товара.
	calcPercent := func(v float64) float64 {
		if in.Price == 0 {
			return 0
		}
		return v / in.Price * 100
	}

	breakEven := c.findPriceForNet(0)
	target10 := c.findPriceForMargin(10)
	target20 := c.findPriceForMargin(20)

	priceRows := make([]models.PriceSensitivityRow, 0, 5)
	for _, delta := range []int{-10, -5, 0, 5, 10} {
		testPrice := in.Price * (1 + float64(delta)/100)
		res := c.compute(probe{price: testPrice, buyout: c.buyout, hours: in.DeliveryTime})
		var margin float64
		if testPrice != 0 {
			margin = res.netProfit / testPrice * 100
		}
		priceRows = append(priceRows, models.PriceSensitivityRow{
			DeltaPct:                delta,
			Price:                   round2(testPrice),
			NetProfitPerUnit:        round2(res.netProfit),
			NetProfitPerUnitPercent: round2(margin),
		})
	}

	buyoutRows := make([]models.BuyoutSensitivityRow, 0, 4)
	for _, rate := range []int{80, 85, 90, 95} {
		res := c.compute(probe{price: in.Price, buyout: float64(rate) / 100, hours: in.DeliveryTime})
		buyoutRows = append(buyoutRows, models.BuyoutSensitivityRow{
			BuyoutRate:              rate,
			NetProfitPerUnit:        round2(res.netProfit),
			NetProfitPerUnitPercent: round2(calcPercent(res.netProfit)),
		})
	}

	deliveryRows := make([]models.DeliverySensitivityRow, 0, 5)
	for _, hours := range []int{29, 35, 45, 55, 61} {
		res := c.compute(probe{price: in.Price, buyout: c.buyout, hours: hours})
		deliveryRows = append(deliveryRows, models.DeliverySensitivityRow{
			Hours:                   hours,
			NetProfitPerUnit:        round2(res.netProfit),
			NetProfitPerUnitPercent: round2(calcPercent(res.netProfit)),
		})
	}

	return models.SchemeResult{
		Scheme:       scheme,
		Price:        round2(in.Price),
		PricePercent: 100.00,

		OzonReward:        -round2(reward),
		OzonRewardPercent: round2(calcPercent(reward)),

		Acquiring:        -round2(acquiring),
		AcquiringPercent: round2(calcPercent(acquiring)),

		ProcessingDelivery:        -round2(current.processingDelivery),
		ProcessingDeliveryPercent: round2(calcPercent(current.processingDelivery)),

		ReturnsCancellations:        -round2(current.returns),
		ReturnsCancellationsPercent: round2(calcPercent(current.returns)),

		TotalOzonCosts:        -round2(current.totalOzonCosts),
		TotalOzonCostsPercent: round2(calcPercent(current.totalOzonCosts)),

		ProfitBeforeCosts:        round2(current.profitBeforeCosts),
		ProfitBeforeCostsPercent: round2(calcPercent(current.profitBeforeCosts)),

		CostPrice:        -round2(in.CostPrice),
		CostPricePercent: round2(calcPercent(in.CostPrice)),

		ProfitTax:        -round2(profitTax),
		ProfitTaxPercent: round2(calcPercent(profitTax)),

		OtherCosts:        -round2(in.OtherCosts),
		OtherCostsPercent: round2(calcPercent(in.OtherCosts)),

		NetProfitPerUnit:        round2(current.netProfit),
		NetProfitPerUnitPercent: round2(calcPercent(current.netProfit)),

		NetProfitTotal:  round2(netProfitTotal),
		AnnualNetProfit: round2(annualNetProfit),

		GrossMarginBeforeTax:        round2(grossMarginBeforeTax),
		GrossMarginBeforeTaxPercent: round2(calcPercent(grossMarginBeforeTax)),
		EffectiveOzonFeePercent:     round2(calcPercent(current.totalOzonCosts)),

		BreakEvenPrice:   round2(breakEven),
		TargetPrice10Pct: round2(target10),
		TargetPrice20Pct: round2(target20),

		LogisticsBreakdown: models.LogisticsBreakdown{
			Base:                  round2(current.baseLogistics),
			TimeCoeff:             round3(current.coeff),
			PricePercentComponent: round2(current.priceComponent),
		},
		ReturnsBreakdown: models.ReturnsBreakdown{
			Base:           round2(current.baseLogistics),
			NotBuyoutShare: round3(1 - c.buyout),
		},
		Sensitivity: models.Sensitivity{
			Price:        priceRows,
			Buyout:       buyoutRows,
			DeliveryTime: deliveryRows,
		},
	}
}

// round2 округляет до копеек.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round3 округляет до трех знаков после запятой.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
