package model

import (
	"sort"
	"strings"
)

// Stock describes a JSE-listed company in the analysis universe.
type Stock struct {
	Ticker string
	Name   string
	Sector string
}

// JSETop50 maps Yahoo tickers (".JO" suffix) to the companies the dashboard offers.
var JSETop50 = map[string]Stock{
	"NPN.JO": {Ticker: "NPN.JO", Name: "Naspers", Sector: "Technology"},
	"PRX.JO": {Ticker: "PRX.JO", Name: "Prosus", Sector: "Technology"},
	"BTI.JO": {Ticker: "BTI.JO", Name: "British American Tobacco", Sector: "Consumer Goods"},
	"AGL.JO": {Ticker: "AGL.JO", Name: "Anglo American", Sector: "Mining"},
	"FSR.JO": {Ticker: "FSR.JO", Name: "FirstRand", Sector: "Financial Services"},
	"SBK.JO": {Ticker: "SBK.JO", Name: "Standard Bank", Sector: "Financial Services"},
	"MTN.JO": {Ticker: "MTN.JO", Name: "MTN Group", Sector: "Telecommunications"},
	"VOD.JO": {Ticker: "VOD.JO", Name: "Vodacom", Sector: "Telecommunications"},
	"GFI.JO": {Ticker: "GFI.JO", Name: "Gold Fields", Sector: "Mining"},
	"AMS.JO": {Ticker: "AMS.JO", Name: "Anglo American Platinum", Sector: "Mining"},
	"ABG.JO": {Ticker: "ABG.JO", Name: "Absa Group", Sector: "Financial Services"},
	"CPI.JO": {Ticker: "CPI.JO", Name: "Capitec Bank", Sector: "Financial Services"},
	"SOL.JO": {Ticker: "SOL.JO", Name: "Sasol", Sector: "Energy"},
	"SLM.JO": {Ticker: "SLM.JO", Name: "Sanlam", Sector: "Financial Services"},
	"REM.JO": {Ticker: "REM.JO", Name: "Remgro", Sector: "Industrial"},
	"ANG.JO": {Ticker: "ANG.JO", Name: "AngloGold Ashanti", Sector: "Mining"},
	"MCG.JO": {Ticker: "MCG.JO", Name: "MultiChoice Group", Sector: "Technology"},
	"BID.JO": {Ticker: "BID.JO", Name: "Bid Corp", Sector: "Consumer Goods"},
	"NED.JO": {Ticker: "NED.JO", Name: "Nedbank Group", Sector: "Financial Services"},
	"DSY.JO": {Ticker: "DSY.JO", Name: "Discovery", Sector: "Financial Services"},
}

// NormalizeTicker upper-cases a symbol and appends the JSE suffix when missing.
func NormalizeTicker(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" || strings.Contains(s, ".") || strings.HasPrefix(s, "^") {
		return s
	}
	return s + ".JO"
}

// LookupStock returns the catalogue entry for a ticker.
func LookupStock(ticker string) (Stock, bool) {
	st, ok := JSETop50[NormalizeTicker(ticker)]
	return st, ok
}

// DisplayName formats a ticker as "NPN.JO - Naspers", falling back to the bare ticker.
func DisplayName(ticker string) string {
	if st, ok := LookupStock(ticker); ok {
		return st.Ticker + " - " + st.Name
	}
	return ticker
}

// Sectors returns the distinct sectors in the universe, sorted.
func Sectors() []string {
	seen := make(map[string]bool)
	var out []string
	for _, st := range JSETop50 {
		if !seen[st.Sector] {
			seen[st.Sector] = true
			out = append(out, st.Sector)
		}
	}
	sort.Strings(out)
	return out
}

// StocksBySector returns the stocks in a sector ordered by ticker.
func StocksBySector(sector string) []Stock {
	var out []Stock
	for _, st := range JSETop50 {
		if strings.EqualFold(st.Sector, sector) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Universe returns every stock ordered by ticker.
func Universe() []Stock {
	out := make([]Stock, 0, len(JSETop50))
	for _, st := range JSETop50 {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}
