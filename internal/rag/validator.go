package rag

import "strings"

// 保险领域关键词表，子串匹配，大小写不敏感
var insuranceKeywords = []string{
	"coverage", "deductible", "copay", "coinsurance", "premium",
	"out-of-pocket", "benefits", "exclusions", "limitations",
	"policyholder", "provider", "network", "formulary",
	"prior authorization", "pre-existing", "emergency",
	"hospital", "claim", "claim form",
}

// 校验阈值
const (
	minDocumentLength = 200
	minKeywordMatches = 2
)

// DocumentValidator 保险文档启发式校验器
// 只做关键词与长度两个门槛，不是分类器，误判由调用方兜底
type DocumentValidator struct{}

// NewDocumentValidator 创建文档校验器
func NewDocumentValidator() *DocumentValidator {
	return &DocumentValidator{}
}

// Validate 校验文档是否疑似保险文档，返回是否通过与原因说明
// 只读操作，不产生副作用
func (v *DocumentValidator) Validate(pages []Page) (bool, string) {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Text)
	}
	combined := strings.TrimSpace(strings.Join(parts, "\n"))

	if len(combined) < minDocumentLength {
		return false, "Document seems too short or mostly empty."
	}

	lowered := strings.ToLower(combined)
	matches := 0
	for _, kw := range insuranceKeywords {
		if strings.Contains(lowered, kw) {
			matches++
		}
	}

	if matches < minKeywordMatches {
		return false, "Document does not appear strongly insurance-related."
	}

	return true, "Valid insurance-related document."
}
