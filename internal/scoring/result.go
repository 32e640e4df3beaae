package scoring

import (
	"cmp"
	"slices"
)

// Row pairs one submitted headline with the label the backend assigned to it
type Row struct {
	Headline  string    `json:"headline"`
	Label     string    `json:"label"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
}

// Result holds the rows of a successful scoring call in submission order
type Result struct {
	Rows []Row `json:"rows"`
}

// SummaryRow counts how many rows carry a label
type SummaryRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// NewResult pairs headlines with labels. The slices must have equal length.
func NewResult(headlines, labels []string) *Result {
	rows := make([]Row, len(headlines))
	for i, h := range headlines {
		rows[i] = Row{
			Headline:  h,
			Label:     labels[i],
			Sentiment: Classify(labels[i]),
		}
	}
	return &Result{Rows: rows}
}

// Summary counts rows per distinct label, most frequent first.
// Labels with equal counts keep the order in which they first appeared.
func (r *Result) Summary() []SummaryRow {
	if r == nil {
		return nil
	}

	index := make(map[string]int)
	var summary []SummaryRow
	for _, row := range r.Rows {
		if i, ok := index[row.Label]; ok {
			summary[i].Count++
			continue
		}
		index[row.Label] = len(summary)
		summary = append(summary, SummaryRow{Label: row.Label, Count: 1})
	}

	slices.SortStableFunc(summary, func(a, b SummaryRow) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return summary
}
