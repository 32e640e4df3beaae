package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		label string
		want  Sentiment
	}{
		{"Very Optimistic", SentimentPositive},
		{"POSITIVE", SentimentPositive},
		{"happy", SentimentPositive},
		{"Pessimistic", SentimentNegative},
		{"negative", SentimentNegative},
		{"I hate it", SentimentNegative},
		{"Neutral-ish", SentimentNeutral},
		{"neu", SentimentNeutral},
		{"unknown", SentimentNone},
		{"", SentimentNone},
		// positive rule is checked before negative
		{"pos/neg", SentimentPositive},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.label))
		})
	}
}

func TestSentiment_Color(t *testing.T) {
	assert.Equal(t, "#d4edda", SentimentPositive.Color())
	assert.Equal(t, "#f8d7da", SentimentNegative.Color())
	assert.Equal(t, "#fff3cd", SentimentNeutral.Color())
	assert.Equal(t, "", SentimentNone.Color())
}

func TestResult_Summary(t *testing.T) {
	result := NewResult(
		[]string{"a", "b", "c", "d", "e", "f"},
		[]string{"neutral", "positive", "negative", "positive", "negative", "mixed"},
	)

	assert.Equal(t, []SummaryRow{
		{Label: "positive", Count: 2},
		{Label: "negative", Count: 2},
		{Label: "neutral", Count: 1},
		{Label: "mixed", Count: 1},
	}, result.Summary())
}

func TestResult_SummaryIsDeterministic(t *testing.T) {
	headlines := []string{"a", "b", "c", "d"}
	labels := []string{"x", "y", "y", "x"}

	first := NewResult(headlines, labels).Summary()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, NewResult(headlines, labels).Summary())
	}
	assert.Equal(t, "x", first[0].Label)
}

func TestResult_SummaryNil(t *testing.T) {
	var r *Result
	assert.Nil(t, r.Summary())
}
