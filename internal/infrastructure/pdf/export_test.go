package pdf

import "github.com/shopspring/decimal"

// Money expone el formateo de importes a las pruebas.
func Money(g *MarotoPDFGenerator, d decimal.Decimal) string { return g.money(d) }
