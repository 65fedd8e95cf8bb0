package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDraftPrompt(t *testing.T) {
	prompt, err := RenderDraftPrompt(DraftPromptInput{
		Context:  "--- Source: policy.pdf | Page 3 ---\nDeductible is $500.",
		Question: "What is my deductible?",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "Deductible is $500.")
	assert.Contains(t, prompt, "What is my deductible?")
	assert.Contains(t, prompt, NotCoveredSentence)
	assert.Contains(t, prompt, `"According to {file_name}, Page {page_no}"`)
	// 上下文槽位在问题槽位之前
	assert.Less(t, strings.Index(prompt, "POLICY CONTEXT:"), strings.Index(prompt, "USER QUESTION:"))
}

func TestRenderRefinePrompt(t *testing.T) {
	prompt, err := RenderRefinePrompt(RefinePromptInput{
		Question:       "What is my deductible?",
		ExistingAnswer: "Your deductible is $500.",
		NewContext:     "Deductible is $500 per year.",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "Your deductible is $500.")
	assert.Contains(t, prompt, "Deductible is $500 per year.")
	assert.Contains(t, prompt, "Coverage Details")
	assert.Contains(t, prompt, "exclusions section manually")
}

// 固定话术是对外契约，逐字校验
func TestContractSentences(t *testing.T) {
	assert.Equal(t, "This information is not covered in the provided policy documents.", NotCoveredSentence)
	assert.Equal(t, "No relevant policy information found.", NoRelevantAnswer)
}
