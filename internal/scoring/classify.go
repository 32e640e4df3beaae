package scoring

import "strings"

// Sentiment is the display class derived from a free-form label
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	// SentimentNone marks a label that matched no rule; it is rendered unstyled
	SentimentNone Sentiment = ""
)

type classRule struct {
	sentiment Sentiment
	fragments []string
}

// classRules are checked in order; the first rule with a matching fragment wins.
var classRules = []classRule{
	{sentiment: SentimentPositive, fragments: []string{"optim", "pos", "happy"}},
	{sentiment: SentimentNegative, fragments: []string{"pess", "neg", "hate"}},
	{sentiment: SentimentNeutral, fragments: []string{"neutral", "neu"}},
}

// Classify maps a label to a sentiment by case-insensitive substring match.
func Classify(label string) Sentiment {
	v := strings.ToLower(label)
	for _, rule := range classRules {
		for _, fragment := range rule.fragments {
			if strings.Contains(v, fragment) {
				return rule.sentiment
			}
		}
	}
	return SentimentNone
}

// Color returns the row background color for the sentiment, or "" when unstyled.
func (s Sentiment) Color() string {
	switch s {
	case SentimentPositive:
		return "#d4edda"
	case SentimentNegative:
		return "#f8d7da"
	case SentimentNeutral:
		return "#fff3cd"
	default:
		return ""
	}
}
