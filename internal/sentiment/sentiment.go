// Package sentiment scores message text for polarity.
//
// The classifier is a pure function of the text: no I/O, no state mutation.
// Scores fall in [-1, 1]; the label mapping is a fixed policy shared by direct
// and group messages.
package sentiment

// Label is the classification attached to every message.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Threshold is the symmetric dead zone around zero. Scores at exactly
// +Threshold or -Threshold are neutral.
const Threshold = 0.1

// LabelFor maps a polarity score to its label.
func LabelFor(score float64) Label {
	switch {
	case score > Threshold:
		return Positive
	case score < -Threshold:
		return Negative
	default:
		return Neutral
	}
}
