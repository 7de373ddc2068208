package enrich

import (
	"testing"
)

func TestShortCode(t *testing.T) {
	cases := []struct {
		identifier string
		want       string
	}{
		{"GOLD - CME (GC)", "GC"},
		{"EURO FX - CME", ShortCodeNA},
		{"UST 10Y NOTE (TY) - CBT (ZN)", "TY"},
		{"", ShortCodeNA},
	}
	for _, tc := range cases {
		if got := shortCode(tc.identifier); got != tc.want {
			t.Errorf("shortCode(%q) = %q, expected %q", tc.identifier, got, tc.want)
		}
	}
}

func TestSplitExchange(t *testing.T) {
	cases := []struct {
		identifier   string
		wantCleaned  string
		wantExchange string
	}{
		{"GOLD - CME (GC)", "GOLD", "CME (GC)"},
		{"EURO FX - CME", "EURO FX", "CME"},
		{"E-MINI S&P 500 - CHICAGO MERCANTILE EXCHANGE", "E-MINI S&P 500", "CHICAGO MERCANTILE EXCHANGE"},
		{"SOME CONTRACT", "SOME CONTRACT", ExchangeOther},
	}
	for _, tc := range cases {
		cleaned, exchange := splitExchange(tc.identifier)
		if cleaned != tc.wantCleaned || exchange != tc.wantExchange {
			t.Errorf("splitExchange(%q) = (%q, %q), expected (%q, %q)",
				tc.identifier, cleaned, exchange, tc.wantCleaned, tc.wantExchange)
		}
	}
}

func TestFriendlyNamePrecedence(t *testing.T) {
	e := NewEngine(nil, nil)

	// GOLD precedes every currency keyword in the default table, so an
	// identifier containing both must resolve to the gold label.
	got := e.Enrich("GOLD/EURO FX CROSS - CME")
	if got.FriendlyName != "Ouro (Gold)" {
		t.Errorf("expected gold label to win by rule order, got %q", got.FriendlyName)
	}
}

func TestFriendlyNameFallback(t *testing.T) {
	e := NewEngine(nil, nil)

	got := e.Enrich("SOY COMPLEX (SPREAD) - CBT")
	if got.FriendlyName != "Soy Complex" {
		t.Errorf("expected generic transform of cleaned name, got %q", got.FriendlyName)
	}
	if got.Sector != SectorOther {
		t.Errorf("expected fallback sector %q, got %q", SectorOther, got.Sector)
	}
}

func TestEnrichKnownAssets(t *testing.T) {
	e := NewEngine(nil, nil)

	cases := []struct {
		identifier string
		friendly   string
		sector     string
		exchange   string
		code       string
	}{
		{"EURO FX - CHICAGO MERCANTILE EXCHANGE", "Euro (EUR)", "Moedas", "CHICAGO MERCANTILE EXCHANGE", ShortCodeNA},
		{"GOLD - CME (GC)", "Ouro (Gold)", "Metais Preciosos", "CME (GC)", "GC"},
		{"BITCOIN - CHICAGO MERCANTILE EXCHANGE", "Bitcoin (BTC)", "Criptomoedas", "CHICAGO MERCANTILE EXCHANGE", ShortCodeNA},
		{"NASDAQ MINI - CME", "Nasdaq 100", "Índices Acionários", "CME", ShortCodeNA},
	}
	for _, tc := range cases {
		got := e.Enrich(tc.identifier)
		if got.FriendlyName != tc.friendly {
			t.Errorf("%q: friendly = %q, expected %q", tc.identifier, got.FriendlyName, tc.friendly)
		}
		if got.Sector != tc.sector {
			t.Errorf("%q: sector = %q, expected %q", tc.identifier, got.Sector, tc.sector)
		}
		if got.Exchange != tc.exchange {
			t.Errorf("%q: exchange = %q, expected %q", tc.identifier, got.Exchange, tc.exchange)
		}
		if got.ShortCode != tc.code {
			t.Errorf("%q: code = %q, expected %q", tc.identifier, got.ShortCode, tc.code)
		}
	}
}

func TestCustomRuleTables(t *testing.T) {
	e := NewEngine(
		[]NameRule{{Keyword: "WIDGET", Label: "Widget"}},
		[]SectorRule{{Keyword: "WIDGET", Sector: "Industrial"}},
	)

	got := e.Enrich("WIDGET FUTURES - NYMEX")
	if got.FriendlyName != "Widget" || got.Sector != "Industrial" {
		t.Errorf("custom tables not applied: %+v", got)
	}
}
