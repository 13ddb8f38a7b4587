package recommendation

import (
	"fmt"
	"math"
	"strings"

	"cafeteria/backend/internal/domain"
)

type ForecastInput struct {
	Averages                domain.DailyAverages
	Projections             domain.Projections
	LowTransactionThreshold float64
	// RecentRevenueVariation compares the last seven days with the seven
	// before them. HasRecentHistory is false when the older week is empty.
	RecentRevenueVariation float64
	HasRecentHistory       bool
}

var ForecastRules = []Rule[ForecastInput]{
	{
		Kind: domain.AdviceWarning,
		When: func(in ForecastInput) bool { return in.Projections.ProfitMonth < 0 },
		Message: func(in ForecastInput) string {
			return fmt.Sprintf("Se proyectan pérdidas de %s este mes", Currency(math.Abs(float64(in.Projections.ProfitMonth))))
		},
		Action: func(ForecastInput) string { return "Revisar y reducir gastos operativos" },
	},
	{
		Kind: domain.AdviceWarning,
		When: func(in ForecastInput) bool { return in.HasRecentHistory && in.RecentRevenueVariation <= -10 },
		Message: func(in ForecastInput) string {
			return fmt.Sprintf("Los ingresos de los últimos 7 días cayeron %s frente a la semana anterior", Percent(math.Abs(in.RecentRevenueVariation)))
		},
		Action: func(ForecastInput) string { return "Revisar precios, surtido y horarios de mayor venta" },
	},
	{
		Kind: domain.AdviceInfo,
		When: func(in ForecastInput) bool { return in.Averages.Transactions < in.LowTransactionThreshold },
		Message: func(in ForecastInput) string {
			return fmt.Sprintf("Promedio de %.1f transacciones diarias, por debajo de %.0f", in.Averages.Transactions, in.LowTransactionThreshold)
		},
		Action: func(ForecastInput) string { return "Considerar promociones para atraer más clientes" },
	},
	{
		Kind: domain.AdviceSuccess,
		When: func(in ForecastInput) bool { return in.Averages.Revenue > 0 },
		Message: func(in ForecastInput) string {
			return fmt.Sprintf("Proyección anual de ingresos: %s", Currency(in.Averages.Revenue*365))
		},
		Action: func(ForecastInput) string { return "Mantener la estrategia actual de ventas" },
	},
}

var ComparativeInsights = []Rule[domain.ComparisonSet]{
	{
		When: func(in domain.ComparisonSet) bool { return in.Revenue.Variation > 15 },
		Message: func(in domain.ComparisonSet) string {
			return fmt.Sprintf("Excelente crecimiento en ingresos del %s", Percent(in.Revenue.Variation))
		},
	},
	{
		When: func(in domain.ComparisonSet) bool { return in.Revenue.Variation < -15 },
		Message: func(in domain.ComparisonSet) string {
			return fmt.Sprintf("Caída significativa en ingresos del %s", Percent(math.Abs(in.Revenue.Variation)))
		},
	},
	{
		When: func(in domain.ComparisonSet) bool { return in.AverageTicket.Variation > 10 },
		Message: func(in domain.ComparisonSet) string {
			return fmt.Sprintf("El ticket promedio aumentó %s", Percent(in.AverageTicket.Variation))
		},
	},
	{
		When: func(in domain.ComparisonSet) bool { return in.AverageTicket.Variation < -10 },
		Message: func(in domain.ComparisonSet) string {
			return fmt.Sprintf("El ticket promedio disminuyó %s", Percent(math.Abs(in.AverageTicket.Variation)))
		},
	},
	{
		When: func(in domain.ComparisonSet) bool { return in.Transactions.Variation > in.Revenue.Variation },
		Message: func(domain.ComparisonSet) string {
			return "Las transacciones crecen más rápido que los ingresos: los clientes compran menos por visita"
		},
	},
}

var ComparativeRecommendations = []Rule[domain.ComparisonSet]{
	{
		When:    func(in domain.ComparisonSet) bool { return in.Revenue.Variation < 0 },
		Message: func(domain.ComparisonSet) string { return "Implementar estrategias para recuperar las ventas" },
	},
	{
		When:    func(in domain.ComparisonSet) bool { return in.Revenue.Variation >= 0 },
		Message: func(domain.ComparisonSet) string { return "Mantener las estrategias de venta actuales" },
	},
	{
		When:    func(in domain.ComparisonSet) bool { return in.AverageTicket.Variation < 0 },
		Message: func(domain.ComparisonSet) string { return "Promover combos y productos de mayor valor" },
	},
	{
		When:    func(in domain.ComparisonSet) bool { return in.AverageTicket.Variation >= 0 },
		Message: func(domain.ComparisonSet) string { return "Seguir impulsando las ventas de mayor valor" },
	},
	{
		When:    func(in domain.ComparisonSet) bool { return in.Transactions.Variation < 0 },
		Message: func(domain.ComparisonSet) string { return "Atraer más clientes con promociones y visibilidad" },
	},
	{
		When:    func(in domain.ComparisonSet) bool { return in.Transactions.Variation >= 0 },
		Message: func(domain.ComparisonSet) string { return "Fidelizar a los clientes actuales" },
	},
}

type TrendInput struct {
	Insights       domain.TrendInsights
	PeakHour       int
	HasPeakHour    bool
	SlowProducts   int
	LastMonthTrend string
	HasLastMonth   bool
}

var TrendRules = []Rule[TrendInput]{
	{
		Kind: domain.AdviceInfo,
		When: func(in TrendInput) bool { return in.HasPeakHour },
		Message: func(in TrendInput) string {
			return fmt.Sprintf("La mayor afluencia se concentra entre las %02d:00 y las %02d:00", in.PeakHour, in.PeakHour+1)
		},
		Action: func(TrendInput) string { return "Reforzar personal y producto listo en esa franja" },
	},
	{
		Kind: domain.AdviceSuccess,
		When: func(in TrendInput) bool { return in.Insights.StarProduct != "" && in.Insights.StarProduct != NoData },
		Message: func(in TrendInput) string {
			return fmt.Sprintf("%s es el producto más vendido del último mes", in.Insights.StarProduct)
		},
		Action: func(TrendInput) string { return "Asegurar inventario suficiente del producto estrella" },
	},
	{
		Kind: domain.AdviceWarning,
		When: func(in TrendInput) bool { return in.SlowProducts > 0 },
		Message: func(in TrendInput) string {
			return fmt.Sprintf("%d productos activos tienen ventas lentas o nulas", in.SlowProducts)
		},
		Action: func(TrendInput) string { return "Promocionarlos en combos o retirarlos del menú" },
	},
	{
		Kind: domain.AdviceInfo,
		When: func(in TrendInput) bool { return in.Insights.BestDay != "" && in.Insights.BestDay != NoData },
		Message: func(in TrendInput) string {
			return fmt.Sprintf("%s es el día de la semana con mayores ingresos", in.Insights.BestDay)
		},
		Action: func(TrendInput) string { return "Programar lanzamientos y promociones ese día" },
	},
	{
		Kind: domain.AdviceWarning,
		When: func(in TrendInput) bool {
			return in.HasLastMonth && (in.LastMonthTrend == domain.TrendStrongDecline || in.LastMonthTrend == domain.TrendModerateDecline)
		},
		Message: func(in TrendInput) string {
			return fmt.Sprintf("Los ingresos del último mes muestran %s", strings.ToLower(in.LastMonthTrend))
		},
		Action: func(TrendInput) string { return "Revisar la oferta y comparar con el trimestre anterior" },
	},
}

// NoData labels an insight that has nothing to reduce over.
const NoData = "Sin datos"
