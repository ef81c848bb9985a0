package domain_test

import (
	"testing"

	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
)

func TestResolveLocale(t *testing.T) {
	cases := []struct {
		tag  string
		want domain.Locale
	}{
		{"de_DE", domain.LocaleGermanGermany},
		{"de-DE", domain.LocaleGermanGermany},
		{"de_AT", domain.LocaleGermanGermany},
		{"de_CH_informal", domain.LocaleGermanGermany},
		{"en_GB", domain.LocaleEnglishGreatBritain},
		{"en-US", domain.LocaleEnglishUSA},
		{"fr_FR", domain.LocaleFrenchFrance},
		{"it-IT", domain.LocaleItalianItaly},
		{"es_ES", domain.LocaleSpanishSpain},
		{"nl_NL", domain.LocaleDutchNetherlands},
		{"pt_BR", domain.LocaleEnglishGreatBritain},
		{"", domain.LocaleEnglishGreatBritain},
		{"  en_GB  ", domain.LocaleEnglishGreatBritain},
	}

	for _, tc := range cases {
		t.Run(tc.tag, func(t *testing.T) {
			if got := domain.ResolveLocale(tc.tag); got != tc.want {
				t.Errorf("ResolveLocale(%q) = %s, want %s", tc.tag, got, tc.want)
			}
		})
	}
}

func TestResolveCurrency(t *testing.T) {
	cases := []struct {
		code string
		want domain.Currency
	}{
		{"EUR", domain.CurrencyEUR},
		{"eur", domain.CurrencyEUR},
		{"GBP", domain.CurrencyGBP},
		{"usd", domain.CurrencyUSD},
		{"CHF", domain.CurrencyCHF},
		{"PLN", domain.CurrencyPLN},
		{"DKK", domain.CurrencyDKK},
		{"SEK", domain.CurrencySEK},
		{"JPY", domain.CurrencyEUR},
		{"", domain.CurrencyEUR},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			if got := domain.ResolveCurrency(tc.code); got != tc.want {
				t.Errorf("ResolveCurrency(%q) = %s, want %s", tc.code, got, tc.want)
			}
		})
	}
}
