package dashboard

import (
	"fmt"

	"oilfx/internal/series"
)

// View is the rendering configuration for one currency: which fields the
// rate chart and table bind to, plus its precomputed daily and weekly averages.
type View struct {
	Profile
	Daily  []Bucket `json:"daily"`
	Weekly []Bucket `json:"weekly"`
}

// State is the dashboard state the currency toggle acts on. It is a value:
// handlers return a new State instead of changing the one they are given.
// The precomputed views are shared between states and never modified.
type State struct {
	views  map[Currency]View
	oil    OilView
	active Currency
}

// NewState precomputes a view per profile and the oil view from s.
// timeField holds the row date as a time.Time.
func NewState(s series.Series, profiles map[Currency]Profile, oil OilFields, active Currency, timeField string) (State, error) {
	if _, ok := profiles[active]; !ok {
		return State{}, fmt.Errorf("no profile for active currency %s", active)
	}
	views := make(map[Currency]View, len(profiles))
	for c, p := range profiles {
		views[c] = View{
			Profile: p,
			Daily:   Aggregate(s, timeField, p.RateField, Day),
			Weekly:  Aggregate(s, timeField, p.RateField, Week),
		}
	}
	return State{views: views, oil: NewOilView(s, oil, timeField), active: active}, nil
}

// Active returns the currency currently shown.
func (st State) Active() Currency {
	return st.active
}

// Oil returns the oil aggregates, which every currency shares.
func (st State) Oil() OilView {
	return st.oil
}

// View returns the rendering configuration of the active currency.
func (st State) View() View {
	return st.views[st.active]
}

// HandleToggle applies a dropdown change. It returns the next state and the
// view to render. An unknown value returns st unchanged with an error.
func HandleToggle(st State, value string) (State, View, error) {
	c, err := ParseCurrency(value)
	if err != nil {
		return st, st.View(), err
	}
	v, ok := st.views[c]
	if !ok {
		return st, st.View(), fmt.Errorf("no view for currency %s", c)
	}
	return State{views: st.views, oil: st.oil, active: c}, v, nil
}
