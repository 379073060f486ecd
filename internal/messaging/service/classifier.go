package service

//go:generate mockgen -source=classifier.go -destination=mocks/mocks.go -package=mocks

// Analyzer scores the polarity of a piece of text in [-1, 1]. The lexicon
// scorer in internal/sentiment is the production implementation.
type Analyzer interface {
	Analyze(text string) float64
}
