// Package dashboard holds what the presentation layer binds to: per-currency
// view profiles, daily and weekly averages, an immutable toggle state and the
// JSON snapshot with display-safe numbers.
package dashboard

import (
	"fmt"
	"strings"

	"oilfx/internal/series"
)

// Currency is the rate shown next to the oil prices.
type Currency int

const (
	RUB Currency = iota
	CAD
)

func (c Currency) String() string {
	switch c {
	case RUB:
		return "RUB"
	case CAD:
		return "CAD"
	default:
		return fmt.Sprintf("Currency(%d)", int(c))
	}
}

// MarshalText encodes the currency code.
func (c Currency) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseCurrency parses a dropdown value such as "RUB" or "cad".
func ParseCurrency(s string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RUB":
		return RUB, nil
	case "CAD":
		return CAD, nil
	default:
		return 0, fmt.Errorf("unknown currency %q", s)
	}
}

// Profile is the fixed rendering configuration of one currency.
type Profile struct {
	Currency         Currency   `json:"currency"`
	RateField        string     `json:"rate_field"`
	ChangeField      string     `json:"change_field"`
	CorrelationField string     `json:"correlation_field"`
	YAxisLabel       string     `json:"y_axis_label"`
	Unit             string     `json:"unit"`
	YDomain          [2]float64 `json:"y_domain"`
	Precision        int        `json:"precision"`
	SourceURL        string     `json:"source_url"`
}

// DefaultProfiles returns the RUB and CAD profiles of the oil dashboard.
func DefaultProfiles() map[Currency]Profile {
	return map[Currency]Profile{
		RUB: {
			Currency:         RUB,
			RateField:        "rate_rub",
			ChangeField:      series.ChangeField("rate_rub"),
			CorrelationField: "corr_wti_rub",
			YAxisLabel:       "RUB per $",
			Unit:             "RUB",
			YDomain:          [2]float64{0, 75},
			Precision:        2,
			SourceURL:        "https://www.quandl.com/data/CURRFX/USDRUB-Currency-Exchange-Rates-USD-vs-RUB",
		},
		CAD: {
			Currency:         CAD,
			RateField:        "rate_cad",
			ChangeField:      series.ChangeField("rate_cad"),
			CorrelationField: "corr_wti_cad",
			YAxisLabel:       "CAD per $",
			Unit:             "CAD",
			YDomain:          [2]float64{0.5, 1.5},
			Precision:        4,
			SourceURL:        "https://www.quandl.com/data/CURRFX/USDCAD-Currency-Exchange-Rates-USD-vs-CAD",
		},
	}
}
