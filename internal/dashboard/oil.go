package dashboard

import "oilfx/internal/series"

// OilFields names the price fields behind the oil charts.
type OilFields struct {
	WTI   string `json:"wti_field"`
	Brent string `json:"brent_field"`
}

// DefaultOilFields returns the WTI and Brent fields of the oil dashboard.
func DefaultOilFields() OilFields {
	return OilFields{WTI: "wti_price", Brent: "brent_price"}
}

// OilView holds the oil aggregates: daily WTI and Brent for the composite
// price chart and weekly WTI for the range bar. It does not depend on the
// active currency.
type OilView struct {
	OilFields
	WTIDaily   []Bucket `json:"wti_daily"`
	BrentDaily []Bucket `json:"brent_daily"`
	WTIWeekly  []Bucket `json:"wti_weekly"`
}

// NewOilView aggregates the oil fields of s.
func NewOilView(s series.Series, f OilFields, timeField string) OilView {
	return OilView{
		OilFields:  f,
		WTIDaily:   Aggregate(s, timeField, f.WTI, Day),
		BrentDaily: Aggregate(s, timeField, f.Brent, Day),
		WTIWeekly:  Aggregate(s, timeField, f.WTI, Week),
	}
}
