package price

import "github.com/folioworks/folio/internal/domain"

// staticMappings is the in-process table of well-known symbol to provider-id
// pairs, consulted before any I/O. Equities and ETFs pass their ticker
// through to the gateway unchanged, so only the symbols whose provider id
// differs from the ticker need an entry.
var staticMappings = map[domain.AssetClass]map[string]string{
	domain.AssetClassCrypto: {
		"BTC":   "bitcoin",
		"ETH":   "ethereum",
		"XLM":   "stellar",
		"SOL":   "solana",
		"ADA":   "cardano",
		"DOGE":  "dogecoin",
		"USDT":  "tether",
		"USDC":  "usd-coin",
		"BNB":   "binancecoin",
		"XRP":   "ripple",
		"DOT":   "polkadot",
		"MATIC": "matic-network",
	},
	domain.AssetClassEquity: {
		"AAPL":  "AAPL",
		"MSFT":  "MSFT",
		"GOOGL": "GOOGL",
		"AMZN":  "AMZN",
		"NVDA":  "NVDA",
		"TSLA":  "TSLA",
	},
	domain.AssetClassETF: {
		"SPY":  "SPY",
		"VOO":  "VOO",
		"VTI":  "VTI",
		"QQQ":  "QQQ",
		"VWCE": "VWCE.DE",
	},
}

// staticLookup returns the static provider id for a symbol, if one exists.
func staticLookup(symbol string, class domain.AssetClass) (string, bool) {
	table, ok := staticMappings[class]
	if !ok {
		return "", false
	}
	id, ok := table[symbol]
	return id, ok
}
