package dashboard

import (
	"encoding/json"
	"io"
	"math"
	"time"

	"oilfx/internal/boxing"
	"oilfx/internal/series"
)

// Snapshot is the document handed to the presentation layer.
type Snapshot struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Active      Currency         `json:"active"`
	View        View             `json:"view"`
	Oil         OilView          `json:"oil"`
	Rows        []map[string]any `json:"rows"`

	// Boxing is the punch statistics dashboard, when a punch file is configured.
	Boxing *boxing.Summary `json:"boxing,omitempty"`
}

// NewSnapshot builds the snapshot of rows under the active view of st.
// NaN and ±Inf values become nil, since JSON has no encoding for them.
func NewSnapshot(st State, rows series.Series, at time.Time) Snapshot {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		clean := make(map[string]any, len(row))
		for k, v := range row {
			if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				clean[k] = nil
				continue
			}
			clean[k] = v
		}
		out[i] = clean
	}
	return Snapshot{
		GeneratedAt: at,
		Active:      st.Active(),
		View:        st.View(),
		Oil:         st.Oil(),
		Rows:        out,
	}
}

// Export writes the snapshot of rows as indented JSON.
func Export(w io.Writer, st State, rows series.Series, at time.Time) error {
	snap := NewSnapshot(st, rows, at)
	return Encode(w, &snap)
}

// Encode writes snap as indented JSON.
func Encode(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
