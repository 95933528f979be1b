package calculator

// Надбавки за время доставки: часы -> (коэффициент к базовому тарифу, процент от цены).
var deliveryTimeCoefficients = []struct {
	hours        int
	coeff        float64
	pricePercent float64
}{
	{29, 1.000, 0.00},
	{30, 1.050, 0.25},
	{31, 1.110, 0.55},
	{32, 1.160, 0.80},
	{33, 1.230, 1.15},
	{34, 1.280, 1.40},
	{35, 1.320, 1.60},
	{36, 1.360, 1.80},
	{37, 1.400, 2.00},
	{38, 1.440, 2.20},
	{39, 1.480, 2.40},
	{40, 1.510, 2.55},
	{41, 1.540, 2.70},
	{42, 1.570, 2.85},
	{43, 1.600, 3.00},
	{44, 1.630, 3.15},
	{45, 1.660, 3.30},
	{46, 1.690, 3.45},
	{47, 1.710, 3.55},
	{48, 1.730, 3.65},
	{49, 1.750, 3.75},
	{50, 1.760, 3.80},
	{51, 1.770, 3.85},
	{52, 1.774, 3.87},
	{53, 1.780, 3.90},
	{54, 1.784, 3.92},
	{55, 1.788, 3.94},
	{56, 1.790, 3.95},
	{57, 1.792, 3.96},
	{58, 1.794, 3.97},
	{59, 1.796, 3.98},
	{60, 1.798, 3.99},
	{61, 1.800, 4.00},
}

// deliveryTimeAdjustments возвращает коэффициент к базовому тарифу и
// процент от цены для заданного времени доставки в часах.
// До 29 часов надбавки нет, от 61 часа действуют максимальные значения.
func deliveryTimeAdjustments(hours int) (coeff, pricePercent float64) {
	if hours <= 29 {
		return 1.000, 0.00
	}
	if hours >= 61 {
		return 1.800, 4.00
	}
	for _, row := range deliveryTimeCoefficients {
		if hours <= row.hours {
			return row.coeff, row.pricePercent
		}
	}
	return 1.800, 4.00
}
