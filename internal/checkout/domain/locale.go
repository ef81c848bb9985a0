package domain

import "strings"

// Locale identifies the language of the hosted payment page.
type Locale string

const (
	LocaleGermanGermany       Locale = "de_DE"
	LocaleEnglishGreatBritain Locale = "en_GB"
	LocaleEnglishUSA          Locale = "en_US"
	LocaleFrenchFrance        Locale = "fr_FR"
	LocaleItalianItaly        Locale = "it_IT"
	LocaleSpanishSpain        Locale = "es_ES"
	LocaleDutchNetherlands    Locale = "nl_NL"
)

var supportedLocales = map[Locale]struct{}{
	LocaleGermanGermany:       {},
	LocaleEnglishGreatBritain: {},
	LocaleEnglishUSA:          {},
	LocaleFrenchFrance:        {},
	LocaleItalianItaly:        {},
	LocaleSpanishSpain:        {},
	LocaleDutchNetherlands:    {},
}

// ResolveLocale maps a site language tag onto a hosted-page locale.
// Separators are normalized to underscores. Any German tag falls back to
// de_DE, anything unrecognized to en_GB.
func ResolveLocale(languageTag string) Locale {
	normalized := strings.ReplaceAll(strings.TrimSpace(languageTag), "-", "_")

	if _, ok := supportedLocales[Locale(normalized)]; ok {
		return Locale(normalized)
	}
	if strings.HasPrefix(strings.ToLower(normalized), "de") {
		return LocaleGermanGermany
	}
	return LocaleEnglishGreatBritain
}

// Currency is a provider-supported ISO 4217 currency code.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyUSD Currency = "USD"
	CurrencyCHF Currency = "CHF"
	CurrencyPLN Currency = "PLN"
	CurrencyDKK Currency = "DKK"
	CurrencySEK Currency = "SEK"
)

var supportedCurrencies = map[Currency]struct{}{
	CurrencyEUR: {},
	CurrencyGBP: {},
	CurrencyUSD: {},
	CurrencyCHF: {},
	CurrencyPLN: {},
	CurrencyDKK: {},
	CurrencySEK: {},
}

// ResolveCurrency maps a store currency code onto a supported currency.
// Unrecognized codes default to EUR.
func ResolveCurrency(code string) Currency {
	upper := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := supportedCurrencies[upper]; ok {
		return upper
	}
	return CurrencyEUR
}
