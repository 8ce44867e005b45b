package extract

import (
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAnalyze_GreetingExample(t *testing.T) {
	res := Analyze("Hello, world! How are you?")
	if res.WordCount != 5 {
		t.Errorf("expected word_count=5, got %d", res.WordCount)
	}
	if res.SentenceCount != 2 {
		t.Errorf("expected sentence_count=2, got %d", res.SentenceCount)
	}
	if res.NTokens != 5 {
		t.Errorf("expected n_tokens=5, got %d", res.NTokens)
	}
	// hello world how are you -> 19 chars / 5 tokens
	if res.AvgTokenLength != 3.8 {
		t.Errorf("expected avg_token_length=3.8, got %v", res.AvgTokenLength)
	}
	if res.CharCount != 26 {
		t.Errorf("expected char_count=26, got %d", res.CharCount)
	}
	if res.LanguageDetected != LanguageUnknown {
		t.Errorf("expected language %q, got %q", LanguageUnknown, res.LanguageDetected)
	}
}

func TestAnalyze_BlankInputIsZero(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t  \r\n"} {
		res := Analyze(in)
		if res != (Result{}) {
			t.Errorf("input %q: expected zero result, got %+v", in, res)
		}
	}
}

func TestAnalyze_TrimsBeforeCounting(t *testing.T) {
	res := Analyze("   two words \n")
	if res.CharCount != 9 {
		t.Errorf("expected char_count of trimmed text (9), got %d", res.CharCount)
	}
	if res.WordCount != 2 {
		t.Errorf("expected 2 words, got %d", res.WordCount)
	}
	if res.SentenceCount != 1 {
		t.Errorf("expected 1 sentence without terminal punctuation, got %d", res.SentenceCount)
	}
}

func TestAnalyze_PunctuationOnly(t *testing.T) {
	res := Analyze("?!... -- ,;")
	if res.NTokens != 0 {
		t.Errorf("expected no tokens, got %d", res.NTokens)
	}
	if res.AvgTokenLength != 0 {
		t.Errorf("expected avg_token_length=0, got %v", res.AvgTokenLength)
	}
	if res.WordCount != 3 {
		t.Errorf("expected 3 whitespace words, got %d", res.WordCount)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases", "Go IS Fun", []string{"go", "is", "fun"}},
		{"splits on punctuation", "don't stop-now", []string{"don", "t", "stop", "now"}},
		{"keeps underscore and digits", "snake_case v2 42", []string{"snake_case", "v2", "42"}},
		{"unicode letters", "Ünïcödé שלום мир", []string{"ünïcödé", "שלום", "мир"}},
		{"punctuation only", "...!?", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("token[%d]: expected %q, got %q", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestAverageLength_MatchesRoundedMean(t *testing.T) {
	inputs := []string{
		"a bb ccc",
		"The quick brown fox jumps over the lazy dog",
		"naïve café résumé",
		strings.Repeat("abc defg ", 7),
	}
	for _, in := range inputs {
		tokens := Tokenize(in)
		sum := 0
		for _, tok := range tokens {
			sum += utf8.RuneCountInString(tok)
		}
		want, _ := strconv.ParseFloat(strconv.FormatFloat(float64(sum)/float64(len(tokens)), 'f', 2, 64), 64)
		if got := AverageLength(tokens); got != want {
			t.Errorf("%q: expected %v, got %v", in, want, got)
		}
	}
	if got := AverageLength(nil); got != 0 {
		t.Errorf("expected 0 for no tokens, got %v", got)
	}
}

func TestAverageLength_RoundsToTwoPlaces(t *testing.T) {
	// 1 + 1 + 2 = 4 / 3 = 1.333...
	if got := AverageLength([]string{"a", "b", "cc"}); got != 1.33 {
		t.Errorf("expected 1.33, got %v", got)
	}
}

func TestAverageLength_TiesRoundToEven(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		// 17/8 = 2.125
		{"aaa aaa aaa aaa aa a a a", 2.12},
		// 19/8 = 2.375
		{"aaa aaa aaa aaa aaa a a a", 2.38},
		{"aaaaa a a a a a a a", 1.5},
	}
	for _, tc := range tests {
		if got := Analyze(tc.in).AvgTokenLength; got != tc.want {
			t.Errorf("%q: expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestMeanLength(t *testing.T) {
	if got := MeanLength([]string{"aaa", "aa", "a", "a"}); got != 1.75 {
		t.Errorf("expected unrounded 1.75, got %v", got)
	}
	if got := MeanLength(nil); got != 0 {
		t.Errorf("expected 0 for no tokens, got %v", got)
	}
}

func TestCountSentences(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"One. Two! Three?", 3},
		{"Wait... what?!", 2},
		{"No terminal punctuation", 1},
		{"...", 0},
		{"Trailing space after dot.   ", 1},
		{"a.b.c", 3},
	}
	for _, tc := range tests {
		if got := CountSentences(tc.in); got != tc.want {
			t.Errorf("%q: expected %d sentences, got %d", tc.in, tc.want, got)
		}
	}
}

func TestAnalyze_CharCountIsRunes(t *testing.T) {
	res := Analyze("héllo wörld")
	if res.CharCount != 11 {
		t.Errorf("expected 11 runes, got %d", res.CharCount)
	}
}
