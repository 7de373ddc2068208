package enrich

// NameRule maps a keyword found in the raw asset identifier to a friendly
// label. Rules are evaluated in slice order and the first match wins, so
// precedence lives in the data, not in control flow. Keywords are matched
// case-insensitively as substrings.
type NameRule struct {
	Keyword string `yaml:"keyword"`
	Label   string `yaml:"label"`
}

// SectorRule maps a keyword found in the resolved friendly name to a
// sector label. Same ordering semantics as NameRule.
type SectorRule struct {
	Keyword string `yaml:"keyword"`
	Sector  string `yaml:"sector"`
}

const (
	// ExchangeOther is the exchange sentinel used when the identifier has
	// no exchange suffix.
	ExchangeOther = "OUTROS"
	// ShortCodeNA is the short-code sentinel used when the identifier has
	// no parenthetical code.
	ShortCodeNA = "N/A"
	// SectorOther is the fallback sector for unmatched friendly names.
	SectorOther = "Outros"
)

// DefaultNameRules is the built-in friendly-name table. Order matters:
// metal and index keywords come before currency keywords so identifiers
// mentioning both (e.g. a gold contract quoted against a currency)
// resolve to the more specific label.
var DefaultNameRules = []NameRule{
	{Keyword: "GOLD", Label: "Ouro (Gold)"},
	{Keyword: "SILVER", Label: "Prata (Silver)"},
	{Keyword: "BITCOIN", Label: "Bitcoin (BTC)"},
	{Keyword: "ETHER", Label: "Ethereum (ETH)"},
	{Keyword: "NASDAQ", Label: "Nasdaq 100"},
	{Keyword: "S&P 500", Label: "S&P 500"},
	{Keyword: "RUSSELL", Label: "Russell 2000"},
	{Keyword: "DJIA", Label: "Dow Jones"},
	{Keyword: "NIKKEI", Label: "Nikkei 225"},
	{Keyword: "VIX", Label: "Volatilidade (VIX)"},
	{Keyword: "U.S. DOLLAR INDEX", Label: "Dólar Index (DXY)"},
	{Keyword: "USD INDEX", Label: "Dólar Index (DXY)"},
	{Keyword: "EURO FX", Label: "Euro (EUR)"},
	{Keyword: "BRITISH POUND", Label: "Libra Esterlina (GBP)"},
	{Keyword: "JAPANESE YEN", Label: "Iene Japonês (JPY)"},
	{Keyword: "SWISS FRANC", Label: "Franco Suíço (CHF)"},
	{Keyword: "CANADIAN DOLLAR", Label: "Dólar Canadense (CAD)"},
	{Keyword: "AUSTRALIAN DOLLAR", Label: "Dólar Australiano (AUD)"},
	{Keyword: "NZ DOLLAR", Label: "Dólar Neozelandês (NZD)"},
	{Keyword: "BRAZILIAN REAL", Label: "Real Brasileiro (BRL)"},
	{Keyword: "MEXICAN PESO", Label: "Peso Mexicano (MXN)"},
	{Keyword: "SOUTH AFRICAN RAND", Label: "Rand Sul-Africano (ZAR)"},
	{Keyword: "UST BOND", Label: "Títulos EUA (T-Bond)"},
	{Keyword: "UST 10Y", Label: "Títulos EUA 10 Anos"},
	{Keyword: "UST 5Y", Label: "Títulos EUA 5 Anos"},
	{Keyword: "UST 2Y", Label: "Títulos EUA 2 Anos"},
	{Keyword: "FED FUNDS", Label: "Fed Funds"},
	{Keyword: "SOFR", Label: "Juros SOFR"},
}

// DefaultSectorRules classifies the already-resolved friendly name.
var DefaultSectorRules = []SectorRule{
	{Keyword: "OURO", Sector: "Metais Preciosos"},
	{Keyword: "PRATA", Sector: "Metais Preciosos"},
	{Keyword: "BITCOIN", Sector: "Criptomoedas"},
	{Keyword: "ETHEREUM", Sector: "Criptomoedas"},
	{Keyword: "NASDAQ", Sector: "Índices Acionários"},
	{Keyword: "S&P", Sector: "Índices Acionários"},
	{Keyword: "RUSSELL", Sector: "Índices Acionários"},
	{Keyword: "DOW JONES", Sector: "Índices Acionários"},
	{Keyword: "NIKKEI", Sector: "Índices Acionários"},
	{Keyword: "VOLATILIDADE", Sector: "Índices Acionários"},
	{Keyword: "TÍTULOS", Sector: "Renda Fixa"},
	{Keyword: "FED FUNDS", Sector: "Renda Fixa"},
	{Keyword: "JUROS", Sector: "Renda Fixa"},
	{Keyword: "DÓLAR", Sector: "Moedas"},
	{Keyword: "EURO", Sector: "Moedas"},
	{Keyword: "LIBRA", Sector: "Moedas"},
	{Keyword: "IENE", Sector: "Moedas"},
	{Keyword: "FRANCO", Sector: "Moedas"},
	{Keyword: "REAL", Sector: "Moedas"},
	{Keyword: "PESO", Sector: "Moedas"},
	{Keyword: "RAND", Sector: "Moedas"},
}
