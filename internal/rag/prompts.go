package rag

import (
	"fmt"
	"strings"
	"text/template"
)

// 两段式生成的固定话术，改动会破坏对外契约
const (
	// NotCoveredSentence 上下文不支持时草稿必须原样输出的句子
	NotCoveredSentence = "This information is not covered in the provided policy documents."
	// NoRelevantAnswer 检索为空时编排器返回的固定答案
	NoRelevantAnswer = "No relevant policy information found."
)

// 提示词用命名槽位模板渲染，避免字符串拼接把内容放错位置
var draftPromptTemplate = template.Must(template.New("draft").Parse(`You are a health insurance policy expert.

Use ONLY the context below to answer the user's question.
If the answer is not present, respond exactly:
"` + NotCoveredSentence + `"

-------------------------
POLICY CONTEXT:
{{.Context}}
-------------------------

USER QUESTION:
{{.Question}}

IMPORTANT:
- Keep the answer brief
- Mention coverage, limits, exclusions clearly
- Include ONE citation like:
"According to {file_name}, Page {page_no}"

ANSWER:
`))

var refinePromptTemplate = template.Must(template.New("refine").Parse(`You are refining an insurance answer.

Original Question:
{{.Question}}

Existing Answer:
{{.ExistingAnswer}}

Additional Context:
{{.NewContext}}

INSTRUCTIONS:
- Improve the answer only if new context is useful
- Do NOT remove correct statements
- Do NOT hallucinate
- If the answer cannot be grounded in the document:
    - Respond with a disclaimer
    - Include fallback guidance
    - Example: "The document does not mention this explicitly. Please check the policy's exclusions section manually."
- Maintain clear structure
- Add citation if needed (Page Number, Section)
- For broad questions, outputs must follow a structured format:
    - Coverage Details
       ...
    - Exceptions
       ...
    - Important Notes
       ...
- EXAMPLE: "According to Page 26, Section 3.4: 'Maternity benefits have a 24-month waiting period.'"

REFINED ANSWER:
`))

// DraftPromptInput 草稿阶段槽位
type DraftPromptInput struct {
	Context  string
	Question string
}

// RefinePromptInput 润色阶段槽位
type RefinePromptInput struct {
	Question       string
	ExistingAnswer string
	NewContext     string
}

// RenderDraftPrompt 渲染草稿提示词
func RenderDraftPrompt(in DraftPromptInput) (string, error) {
	var sb strings.Builder
	if err := draftPromptTemplate.Execute(&sb, in); err != nil {
		return "", fmt.Errorf("渲染草稿提示词失败: %w", err)
	}
	return sb.String(), nil
}

// RenderRefinePrompt 渲染润色提示词
func RenderRefinePrompt(in RefinePromptInput) (string, error) {
	var sb strings.Builder
	if err := refinePromptTemplate.Execute(&sb, in); err != nil {
		return "", fmt.Errorf("渲染润色提示词失败: %w", err)
	}
	return sb.String(), nil
}
