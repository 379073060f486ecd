package sentiment

// Built-in term lists. Deliberately small: the classifier only needs to be a
// plausible polarity signal for demo conversations, not a research-grade model.
var defaultPositive = []string{
	"amazing", "awesome", "beautiful", "brilliant", "celebrate", "congrats",
	"congratulations", "delighted", "enjoy", "excellent", "excited", "fantastic",
	"fun", "glad", "good", "great", "happy", "helpful", "incredible", "interesting",
	"kind", "like", "love", "lovely", "nice", "perfect", "pleasant", "pleased",
	"proud", "thank you", "thanks", "welcome", "wonderful", "yay",
}

var defaultNegative = []string{
	"angry", "annoying", "awful", "bad", "boring", "broken", "disappointed",
	"disappointing", "dislike", "fail", "failed", "frustrated", "hate", "horrible",
	"hurt", "miserable", "nasty", "painful", "poor", "sad", "scared", "sorry",
	"terrible", "tired", "ugly", "unhappy", "upset", "useless", "worried", "worse",
	"worst", "wrong",
}

var defaultNegators = []string{
	"not", "no", "never", "don't", "doesn't", "didn't", "isn't", "wasn't",
	"aren't", "won't", "can't", "couldn't", "shouldn't", "wouldn't", "hardly",
}
