package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_ShortTextUnchanged(t *testing.T) {
	f := NewFrequency()
	assert.Equal(t, "A thief enters dreams.", f.Summarize("  A thief enters dreams. ", 2))
	assert.Equal(t, "no punctuation here", f.Summarize("no punctuation here", 1))
}

func TestSummarize_KeepsTopSentencesInOrder(t *testing.T) {
	text := "Dom Cobb steals secrets from dreams. " +
		"The weather was mild that year. " +
		"Cobb must plant an idea inside the dreams of an heir. " +
		"Lunch was served."
	got := NewFrequency().Summarize(text, 2)
	assert.Equal(t, "Dom Cobb steals secrets from dreams. Cobb must plant an idea inside the dreams of an heir.", got)
}

func TestSummarize_DefaultLimit(t *testing.T) {
	text := "One. Two. Three. Four."
	got := NewFrequency().Summarize(text, 0)
	assert.Len(t, sentenceRe.FindAllString(got, -1), 2)
}
