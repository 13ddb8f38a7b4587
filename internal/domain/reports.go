package domain

import "time"

const (
	AdviceWarning = "warning"
	AdviceInfo    = "info"
	AdviceSuccess = "success"

	TrendStrongGrowth    = "Crecimiento fuerte"
	TrendModerateGrowth  = "Crecimiento moderado"
	TrendStable          = "Estable"
	TrendModerateDecline = "Declive moderado"
	TrendStrongDecline   = "Declive fuerte"

	ComparativeMonthly = "mensual"
	ComparativeWeekly  = "semanal"
)

// Advice is a human-readable recommendation emitted by a rule.
type Advice struct {
	Kind    string `json:"tipo"`
	Message string `json:"mensaje"`
	Action  string `json:"accion"`
}

type Period struct {
	From      string `json:"inicio"`
	To        string `json:"fin"`
	Month     int    `json:"mes,omitempty"`
	Year      int    `json:"año,omitempty"`
	MonthName string `json:"nombre_mes,omitempty"`
}

type DailySnapshot struct {
	Date             string    `json:"fecha"`
	Transactions     int64     `json:"transacciones_hoy"`
	Units            int64     `json:"unidades_hoy"`
	Revenue          float64   `json:"ingresos_hoy"`
	DistinctProducts int64     `json:"productos_vendidos_hoy"`
	AverageTicket    float64   `json:"ticket_promedio"`
	MinSale          float64   `json:"venta_minima"`
	MaxSale          float64   `json:"venta_maxima"`
	FirstSale        string    `json:"primera_venta"`
	LastSale         string    `json:"ultima_venta"`
	Expenses         float64   `json:"gastos_hoy"`
	ExpenseRecords   int64     `json:"total_gastos_registros"`
	NetProfit        float64   `json:"ganancia_neta_hoy"`
	Degraded         []string  `json:"secciones_degradadas,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

type DayTotals struct {
	Transactions int64   `json:"transacciones_ayer"`
	Units        int64   `json:"unidades_ayer"`
	Revenue      float64 `json:"ingresos_ayer"`
	Expenses     float64 `json:"gastos_ayer"`
	NetProfit    float64 `json:"ganancia_neta_ayer"`
}

type MetricComparison struct {
	Actual    float64 `json:"actual"`
	Previous  float64 `json:"anterior"`
	Variation float64 `json:"variacion"`
	Trend     string  `json:"tendencia"`
}

type ComparisonSet struct {
	Transactions  MetricComparison `json:"transacciones"`
	Units         MetricComparison `json:"unidades"`
	Revenue       MetricComparison `json:"ingresos"`
	AverageTicket MetricComparison `json:"ticketPromedio"`
	Products      MetricComparison `json:"productosVendidos"`
	Expenses      MetricComparison `json:"gastos"`
	NetProfit     MetricComparison `json:"gananciaNeta"`
}

type RankedProduct struct {
	ProductID     int64   `json:"id"`
	Name          string  `json:"nombre"`
	Category      string  `json:"categoria"`
	Units         int64   `json:"cantidad_vendida"`
	Revenue       float64 `json:"ingresos"`
	Transactions  int64   `json:"transacciones"`
	AverageTicket float64 `json:"ticket_promedio"`
	AveragePrice  float64 `json:"precio_promedio"`
	DaysSold      int64   `json:"dias_vendido"`
	RevenueShare  float64 `json:"porcentaje_ingresos"`
}

type CategorySummary struct {
	Category      string  `json:"categoria"`
	Emoji         string  `json:"emoji,omitempty"`
	Products      int64   `json:"productos"`
	Units         int64   `json:"unidades_vendidas"`
	Revenue       float64 `json:"ingresos"`
	Transactions  int64   `json:"transacciones"`
	AverageTicket float64 `json:"ticket_promedio"`
	RevenueShare  float64 `json:"porcentaje_ingresos"`
	Performance   string  `json:"rendimiento,omitempty"`
}

type HourBucket struct {
	Hour             int     `json:"hora"`
	Label            string  `json:"hora_formato"`
	Period           string  `json:"periodo"`
	Transactions     int64   `json:"transacciones"`
	Units            int64   `json:"unidades_vendidas"`
	Revenue          float64 `json:"ingresos"`
	AverageTicket    float64 `json:"ticket_promedio"`
	TransactionShare float64 `json:"porcentaje_transacciones"`
	DaysAnalyzed     int64   `json:"dias_analizados"`
}

type DayBucket struct {
	Date             string  `json:"fecha_venta"`
	Weekday          int     `json:"dia_semana"`
	DayName          string  `json:"nombre_dia"`
	ShortDate        string  `json:"fecha_corta"`
	Transactions     int64   `json:"transacciones"`
	Units            int64   `json:"unidades_vendidas"`
	Revenue          float64 `json:"ingresos"`
	AverageTicket    float64 `json:"ticket_promedio"`
	DistinctProducts int64   `json:"productos_diferentes"`
	FirstSale        string  `json:"primera_venta"`
	LastSale         string  `json:"ultima_venta"`
	Expenses         float64 `json:"gastos_dia"`
	NetProfit        float64 `json:"ganancia_neta"`
}

type WeekdayBucket struct {
	Weekday              int     `json:"dia_semana"`
	DayName              string  `json:"nombre_dia"`
	DaysObserved         int64   `json:"dias_analizados"`
	Transactions         int64   `json:"transacciones"`
	Units                int64   `json:"unidades_vendidas"`
	Revenue              float64 `json:"ingresos"`
	AverageTicket        float64 `json:"ticket_promedio"`
	AvgDailyRevenue      float64 `json:"ingresos_promedio_dia"`
	AvgDailyTransactions float64 `json:"transacciones_promedio_dia"`
	AvgDailyUnits        float64 `json:"unidades_promedio_dia"`
	Description          string  `json:"descripcion,omitempty"`
}

type ReportMetadata struct {
	BusinessName      string    `json:"negocio"`
	Timezone          string    `json:"zona_horaria"`
	OperatingHours    string    `json:"horario"`
	TopProductsPeriod string    `json:"periodo_top_productos"`
	GeneratedAt       time.Time `json:"generado"`
}

type Dashboard struct {
	Today       DailySnapshot     `json:"hoy"`
	Yesterday   DayTotals         `json:"ayer"`
	Comparison  ComparisonSet     `json:"comparacion"`
	TopProducts []RankedProduct   `json:"topProductos"`
	HourlySales []HourBucket      `json:"ventasPorHora"`
	Trend       []DayBucket       `json:"tendencia"`
	Categories  []CategorySummary `json:"ventasPorCategoria"`
	Metadata    ReportMetadata    `json:"metadata"`
	Degraded    []string          `json:"secciones_degradadas,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// PeriodSummary reduces a list of days. Best and worst days over an empty
// list are zero-valued buckets.
type PeriodSummary struct {
	DaysOperated        int64     `json:"dias_operacion"`
	Transactions        int64     `json:"transacciones"`
	Units               int64     `json:"unidades"`
	Revenue             float64   `json:"ingresos"`
	Expenses            float64   `json:"gastos"`
	NetProfit           float64   `json:"ganancia_neta"`
	AverageTicket       float64   `json:"ticket_promedio"`
	AverageDailyRevenue float64   `json:"promedio_diario"`
	BestDay             DayBucket `json:"mejor_dia"`
	WorstDay            DayBucket `json:"peor_dia"`
	BusiestDay          DayBucket `json:"dia_mas_transacciones"`
}

type PreviousPeriod struct {
	Transactions  int64         `json:"transacciones_anterior"`
	Units         int64         `json:"unidades_anterior"`
	Revenue       float64       `json:"ingresos_anterior"`
	AverageTicket float64       `json:"ticket_promedio_anterior"`
	Expenses      float64       `json:"gastos_anterior"`
	Variations    ComparisonSet `json:"variaciones"`
}

type WeeklyReport struct {
	Period       Period          `json:"periodo"`
	DailySales   []DayBucket     `json:"ventasPorDia"`
	TopProducts  []RankedProduct `json:"topProductos"`
	PeakHours    []HourBucket    `json:"horariosPico"`
	PreviousWeek PreviousPeriod  `json:"comparacionSemanaAnterior"`
	Summary      PeriodSummary   `json:"resumen"`
	Degraded     []string        `json:"secciones_degradadas,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

type MonthlyReport struct {
	Period        Period            `json:"periodo"`
	DailySales    []DayBucket       `json:"ventasPorDia"`
	TopProducts   []RankedProduct   `json:"topProductos"`
	Categories    []CategorySummary `json:"categorias"`
	PreviousMonth PreviousPeriod    `json:"comparacionMesAnterior"`
	Summary       PeriodSummary     `json:"estadisticas"`
	Degraded      []string          `json:"secciones_degradadas,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

type ForecastWindow struct {
	Days          int    `json:"dias"`
	From          string `json:"inicio"`
	To            string `json:"fin"`
	DaysWithSales int64  `json:"dias_con_ventas"`
}

type DailyAverages struct {
	Revenue      float64 `json:"ingresos"`
	Units        float64 `json:"unidades"`
	Transactions float64 `json:"transacciones"`
	Expenses     float64 `json:"gastos"`
	NetProfit    float64 `json:"ganancia"`
}

type Projections struct {
	RevenueWeek       int64 `json:"ingresosSemana"`
	UnitsWeek         int64 `json:"unidadesSemana"`
	TransactionsWeek  int64 `json:"transaccionesSemana"`
	ExpensesWeek      int64 `json:"gastosSemana"`
	ProfitWeek        int64 `json:"gananciaSemana"`
	RevenueMonth      int64 `json:"ingresosMes"`
	UnitsMonth        int64 `json:"unidadesMes"`
	TransactionsMonth int64 `json:"transaccionesMes"`
	ExpensesMonth     int64 `json:"gastosMes"`
	ProfitMonth       int64 `json:"gananciaMes"`
}

type ProductForecast struct {
	ProductID     int64   `json:"id"`
	Name          string  `json:"nombre"`
	Category      string  `json:"categoria"`
	Units         int64   `json:"unidades_vendidas"`
	DaysSold      int64   `json:"dias_vendido"`
	AvgDailyUnits float64 `json:"promedio_diario"`
	WeekUnits     int64   `json:"prediccion_semana"`
	MonthUnits    int64   `json:"prediccion_mes"`
	Frequency     string  `json:"frecuencia_venta"`
}

type Predictions struct {
	Window          ForecastWindow    `json:"ventana"`
	DailyAverages   DailyAverages     `json:"promediosDiarios"`
	Projections     Projections       `json:"proyecciones"`
	WeekdayTendency []WeekdayBucket   `json:"tendenciaDiaSemana"`
	Products        []ProductForecast `json:"prediccionesProductos"`
	Recommendations []Advice          `json:"recomendaciones"`
	Degraded        []string          `json:"secciones_degradadas,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
}

type MonthBucket struct {
	Month            string  `json:"mes"`
	MonthName        string  `json:"nombre_mes"`
	Transactions     int64   `json:"transacciones"`
	Units            int64   `json:"unidades_vendidas"`
	Revenue          float64 `json:"ingresos"`
	AverageTicket    float64 `json:"ticket_promedio"`
	DistinctProducts int64   `json:"productos_diferentes"`
	ActiveDays       int64   `json:"dias_activos"`
	AvgDailyRevenue  float64 `json:"promedio_diario"`
	Variation        float64 `json:"variacion"`
	Trend            string  `json:"tendencia"`
}

type ProductClass struct {
	ProductID int64   `json:"id"`
	Name      string  `json:"nombre"`
	Category  string  `json:"categoria"`
	Units     int64   `json:"unidades_vendidas"`
	Revenue   float64 `json:"ingresos"`
	DaysSold  int64   `json:"dias_vendido"`
	Class     string  `json:"clasificacion"`
}

type TrendInsights struct {
	BestCategory string `json:"mejor_categoria"`
	PeakHour     string `json:"hora_pico"`
	StarProduct  string `json:"producto_estrella"`
	BestDay      string `json:"mejor_dia"`
}

type Trends struct {
	Quarterly       []MonthBucket     `json:"tendenciaTrimestral"`
	Categories      []CategorySummary `json:"crecimientoCategorias"`
	PeakHours       []HourBucket      `json:"horasPico"`
	ProductClasses  []ProductClass    `json:"clasificacionProductos"`
	WeekdayPatterns []WeekdayBucket   `json:"patronesSemanales"`
	Insights        TrendInsights     `json:"insights"`
	Recommendations []Advice          `json:"recomendaciones"`
	Degraded        []string          `json:"secciones_degradadas,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
}

type CategoryComparison struct {
	Category  string  `json:"categoria"`
	Actual    float64 `json:"ingresos_actual"`
	Previous  float64 `json:"ingresos_anterior"`
	Variation float64 `json:"variacion"`
	Trend     string  `json:"tendencia"`
}

type Comparative struct {
	Kind            string               `json:"tipo"`
	Current         Period               `json:"periodoActual"`
	Previous        Period               `json:"periodoAnterior"`
	Metrics         ComparisonSet        `json:"metricas"`
	Categories      []CategoryComparison `json:"categorias,omitempty"`
	Insights        []string             `json:"insights"`
	Recommendations []string             `json:"recomendaciones"`
	Degraded        []string             `json:"secciones_degradadas,omitempty"`
	Timestamp       time.Time            `json:"timestamp"`
}

// DailyProductReport is the per-product breakdown of a single day.
type DailyProductReport struct {
	Date      string          `json:"fecha"`
	Products  []RankedProduct `json:"productos"`
	Totals    DailySnapshot   `json:"totales"`
	Timestamp time.Time       `json:"timestamp"`
}

// Statistics is the all-time overview of the ledgers.
type Statistics struct {
	Transactions   int64     `json:"total_ventas"`
	Units          int64     `json:"total_unidades"`
	Revenue        float64   `json:"total_ingresos"`
	AverageSale    float64   `json:"venta_promedio"`
	MinSale        float64   `json:"venta_minima"`
	MaxSale        float64   `json:"venta_maxima"`
	DaysWithSales  int64     `json:"dias_con_ventas"`
	ActiveProducts int64     `json:"productos_activos"`
	Expenses       float64   `json:"total_gastos"`
	ExpenseRecords int64     `json:"total_gastos_registros"`
	NetProfit      float64   `json:"ganancia_neta"`
	Degraded       []string  `json:"secciones_degradadas,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
