package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_CorrectAnswer(t *testing.T) {
	q := &Question{
		Choices:      []string{"10 million", "12 million", "14 million", "16 million"},
		CorrectIndex: 2,
	}
	assert.Equal(t, "14 million", q.CorrectAnswer())

	q.CorrectIndex = 7
	assert.Equal(t, "", q.CorrectAnswer())

	q.CorrectIndex = -1
	assert.Equal(t, "", q.CorrectAnswer())
}

func TestQuestionDraft_JSONKeys(t *testing.T) {
	raw := `{
		"did_you_know": "Japan has over 6,800 islands.",
		"prompt": "What is the population of Japan?",
		"choices": ["100 million", "125 million", "150 million", "175 million"],
		"correct_index": 1,
		"surprising_fact": "Tokyo is the largest metro area in the world.",
		"insight": "Population has been declining since 2010.",
		"difficulty": 2
	}`

	var draft QuestionDraft
	require.NoError(t, json.Unmarshal([]byte(raw), &draft))
	assert.Equal(t, "What is the population of Japan?", draft.Prompt)
	assert.Len(t, draft.Choices, 4)
	assert.Equal(t, 1, draft.CorrectIndex)
	assert.Equal(t, 2, draft.Difficulty)
	assert.NotEmpty(t, draft.DidYouKnow)
}

func TestDataset_Shape(t *testing.T) {
	raw := `{
		"Japan": {
			"demographics": {
				"population": {"value": 125000000, "year": 2023},
				"median_age": {"value": 48.4}
			}
		}
	}`

	var ds Dataset
	require.NoError(t, json.Unmarshal([]byte(raw), &ds))

	block, ok := ds["Japan"]["demographics"]
	require.True(t, ok)

	pop := block["population"]
	require.NotNil(t, pop.Value)
	assert.Equal(t, float64(125000000), *pop.Value)
	require.NotNil(t, pop.Year)
	assert.Equal(t, 2023, *pop.Year)

	age := block["median_age"]
	require.NotNil(t, age.Value)
	assert.Nil(t, age.Year)
}
