package calculator

import "math"

// Максимальный учитываемый объем отправления в литрах.
const maxVolumeLiters = 2112.0

// Тариф логистики для товаров дешевле 300₽: верхняя граница объема (л) -> стоимость (₽).
var cheapLogisticsTable = []struct {
	maxVolume float64
	cost      float64
}{
	{0.2, 40},
	{0.3, 44},
	{0.5, 48},
	{1, 56},
	{2, 66},
	{3, 76},
	{5, 96},
	{10, 146},
	{20, 216},
	{30, 306},
	{50, 426},
	{100, 786},
	{190, 792},
}

// baseLogistics возвращает базовый тариф логистики в рублях.
// Тариф зависит от цены товара (граница 300₽) и объема в литрах,
// время доставки здесь не учитывается.
func baseLogistics(price, volumeLiters float64) float64 {
	volumeForCalc := math.Min(volumeLiters, maxVolumeLiters)

	if price <= 300 {
		if volumeForCalc > 190 {
			return 792
		}
		for _, row := range cheapLogisticsTable {
			if volumeLiters <= row.maxVolume {
				return row.cost
			}
		}
		return 792
	}

	// Для товаров дороже 300₽ объем округляется вверх до целого литра.
	liters := int(math.Ceil(volumeLiters))
	switch {
	case liters <= 1:
		return 46
	case liters <= 2:
		return 56
	case liters <= 3:
		return 66
	case liters <= 190:
		return 66 + float64(liters-3)*15
	default:
		return 2871
	}
}
