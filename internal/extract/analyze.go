package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LanguageUnknown is reported for every non-empty text; no detection is done.
const LanguageUnknown = "unknown"

// Result holds lexical statistics for one text.
type Result struct {
	WordCount        int     `json:"word_count"`
	NTokens          int     `json:"n_tokens"`
	AvgTokenLength   float64 `json:"avg_token_length"`
	CharCount        int     `json:"char_count"`
	SentenceCount    int     `json:"sentence_count"`
	LanguageDetected string  `json:"language_detected,omitempty"`
}

var (
	// Letters, numbers and underscore in any script.
	tokenRe    = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	sentenceRe = regexp.MustCompile(`[.!?]+`)
)

// Analyze computes word, token, character and sentence counts. Blank input
// yields a zero Result.
func Analyze(text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}
	}

	tokens := Tokenize(text)
	return Result{
		WordCount:        len(strings.Fields(text)),
		NTokens:          len(tokens),
		AvgTokenLength:   AverageLength(tokens),
		CharCount:        utf8.RuneCountInString(text),
		SentenceCount:    CountSentences(text),
		LanguageDetected: LanguageUnknown,
	}
}

// Tokenize lower-cases text and returns its maximal runs of word characters.
// Punctuation never forms a token.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

// AverageLength is the mean rune length of tokens rounded to two places,
// or 0 for no tokens. Exact ties round to even, so 2.125 becomes 2.12.
func AverageLength(tokens []string) float64 {
	mean := MeanLength(tokens)
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(mean, 'f', 2, 64), 64)
	if err != nil {
		return mean
	}
	return rounded
}

// MeanLength is the unrounded mean rune length of tokens, or 0 for no tokens.
func MeanLength(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	total := 0
	for _, t := range tokens {
		total += utf8.RuneCountInString(t)
	}
	return float64(total) / float64(len(tokens))
}

// CountSentences splits on runs of '.', '!' and '?' and counts the
// fragments that are not blank.
func CountSentences(text string) int {
	n := 0
	for _, s := range sentenceRe.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
