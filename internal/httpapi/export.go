package httpapi

import (
	"bytes"
	"encoding/csv"
	"html/template"
	"strconv"
	"strings"

	"cafeteria/backend/internal/domain"
)

func dailyReportToCSV(report domain.DailyProductReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	rows := [][]string{
		{"seccion", "clave", "valor"},
		{"resumen", "fecha", report.Date},
		{"resumen", "transacciones", strconv.FormatInt(report.Totals.Transactions, 10)},
		{"resumen", "unidades", strconv.FormatInt(report.Totals.Units, 10)},
		{"resumen", "ingresos", money(report.Totals.Revenue)},
		{"resumen", "gastos", money(report.Totals.Expenses)},
		{"resumen", "ganancia_neta", money(report.Totals.NetProfit)},
	}
	for _, p := range report.Products {
		rows = append(rows,
			[]string{"producto", csvCell(p.Name + "_cantidad"), strconv.FormatInt(p.Units, 10)},
			[]string{"producto", csvCell(p.Name + "_ingresos"), money(p.Revenue)},
		)
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// csvCell keeps spreadsheets from evaluating user text as a formula.
func csvCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var dailyReportHTMLTmpl = template.Must(template.New("reporte-diario").Parse(`<!doctype html>
<html lang="es">
<head>
  <meta charset="utf-8" />
  <title>Reporte diario {{.Date}}</title>
  <style>
    body { font-family: sans-serif; margin: 24px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border: 1px solid #ddd; padding: 6px; font-size: 13px; }
    h2, h3 { margin-bottom: 4px; }
  </style>
</head>
<body>
  <h2>Reporte diario {{.Date}}</h2>
  <p>Transacciones: {{.Totals.Transactions}} | Unidades: {{.Totals.Units}}</p>
  <p>Ingresos: {{printf "%.2f" .Totals.Revenue}} | Gastos: {{printf "%.2f" .Totals.Expenses}} | Ganancia neta: {{printf "%.2f" .Totals.NetProfit}}</p>

  <h3>Productos</h3>
  <table>
    <thead><tr><th>Producto</th><th>Categoría</th><th>Cantidad</th><th>Ingresos</th><th>%</th></tr></thead>
    <tbody>{{range .Products}}<tr><td>{{.Name}}</td><td>{{.Category}}</td><td style="text-align:right;">{{.Units}}</td><td style="text-align:right;">{{printf "%.2f" .Revenue}}</td><td style="text-align:right;">{{printf "%.2f" .RevenueShare}}</td></tr>{{end}}</tbody>
  </table>
</body>
</html>
`))

func dailyReportToPrintableHTML(report domain.DailyProductReport) string {
	var buf bytes.Buffer
	if err := dailyReportHTMLTmpl.Execute(&buf, report); err != nil {
		return "<!doctype html><html><body><p>Error al generar el reporte.</p></body></html>"
	}
	return buf.String()
}
