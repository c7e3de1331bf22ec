// Package summarizer shortens movie synopses for narrow displays.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	tokenRe    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// Frequency keeps the sentences whose words occur most often in the text,
// in their original order.
type Frequency struct {
	stopwords map[string]struct{}
}

func NewFrequency() *Frequency {
	return &Frequency{stopwords: defaultStopwords()}
}

// Summarize returns at most maxSentences sentences of text. Text without
// sentence punctuation is returned trimmed.
func (f *Frequency) Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 2
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) <= maxSentences {
		return strings.TrimSpace(text)
	}

	tokens := make([][]string, len(sentences))
	weight := map[string]float64{}
	for i, sent := range sentences {
		tokens[i] = tokenRe.FindAllString(strings.ToLower(sent), -1)
		for _, tok := range tokens[i] {
			if _, stop := f.stopwords[tok]; !stop {
				weight[tok]++
			}
		}
	}
	var top float64
	for _, v := range weight {
		top = math.Max(top, v)
	}

	type ranked struct {
		idx   int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i := range sentences {
		var s float64
		if top > 0 {
			for _, tok := range tokens[i] {
				s += weight[tok] / top
			}
		}
		// long sentences should not win on length alone
		if n := len(tokens[i]); n > 0 {
			s /= math.Sqrt(float64(n))
		}
		scores[i] = ranked{i, s}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	keep := make([]int, maxSentences)
	for i := range keep {
		keep[i] = scores[i].idx
	}
	sort.Ints(keep)
	out := make([]string, len(keep))
	for i, idx := range keep {
		out[i] = strings.TrimSpace(sentences[idx])
	}
	return strings.Join(out, " ")
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "for", "to", "of", "in", "on", "at", "by", "with", "as",
		"is", "are", "was", "were", "be", "been", "it", "its", "this", "that", "from", "into", "about", "after",
		"before", "his", "her", "their", "he", "she", "they", "who", "when", "while", "must", "can", "will",
		"film", "movie", "story",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
