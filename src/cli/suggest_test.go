package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var entries = []string{
	"Essay_q1234567_poging_2023-01-31-23-59-59_essay.docx",
	"Essay_q1234567_poging_2023-01-31-23-59-59.txt",
	"Essay_q7654321_poging_2023-01-31-23-59-59_essay.docx",
	"README.md",
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, []string{
		"Essay_q1234567_poging_2023-01-31-23-59-59_essay.docx",
	}, Suggest("Essay_q1234567_poging_2023-01-31-23-59-59_esay.docx", entries, 4))
	assert.Empty(t, Suggest("README.md", entries, 1), "exact matches aren't suggested")
	assert.Empty(t, Suggest("something else entirely", entries, 3))
}

func TestPrettyPrintSuggestion(t *testing.T) {
	assert.Equal(t, "; maybe you meant README.md", PrettyPrintSuggestion("README.txt", entries, 5))
	assert.Equal(t, "", PrettyPrintSuggestion("wibble", entries, 2))
	assert.Equal(t, "; maybe you meant ab, ac or ad", PrettyPrintSuggestion("aa", []string{"ab", "ac", "ad", "ae"}, 2))
}
