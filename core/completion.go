package orchestration

import "strings"

const defaultMaxClosingWords = 15

func defaultClosingPhrases() []string {
	return []string{
		"thanks",
		"thank you",
		"talk soon",
		"have a good one",
		"see you",
		"bye",
		"goodbye",
		"sounds good",
		"perfect",
		"will do",
	}
}

// CompletionOptions tunes the textual conclusion heuristic.
type CompletionOptions struct {
	// MaxClosingWords is the length bound above which an utterance is never
	// treated as a closing line.
	MaxClosingWords int
	// ClosingPhrases are matched as substrings, case-insensitively.
	ClosingPhrases []string
}

type CompletionOption func(*CompletionOptions)

func WithMaxClosingWords(words int) CompletionOption {
	return func(o *CompletionOptions) {
		if words > 0 {
			o.MaxClosingWords = words
		}
	}
}

func WithClosingPhrases(phrases ...string) CompletionOption {
	return func(o *CompletionOptions) {
		if len(phrases) > 0 {
			o.ClosingPhrases = phrases
		}
	}
}

// completionDetector implements the fallback textual heuristic: short
// utterances containing a known closing phrase conclude the call. The
// explicit end-of-call action is always authoritative over this.
type completionDetector struct {
	maxClosingWords int
	closingPhrases  []string
}

func newCompletionDetector(opts ...CompletionOption) completionDetector {
	options := CompletionOptions{
		MaxClosingWords: defaultMaxClosingWords,
		ClosingPhrases:  defaultClosingPhrases(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	return completionDetector{
		maxClosingWords: options.MaxClosingWords,
		closingPhrases:  options.ClosingPhrases,
	}
}

// ShouldConclude reports whether the utterance reads as a closing line. A
// long utterance never concludes the call even when it contains a closing
// phrase; agents often thank each other mid-conversation.
func (d completionDetector) ShouldConclude(text string) bool {
	lowered := strings.ToLower(text)

	if len(strings.Fields(lowered)) > d.maxClosingWords {
		return false
	}

	for _, phrase := range d.closingPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
