package llm

import (
	"fmt"
	"strings"

	"github.com/minghan-wu/litdomain/constants"
)

const (
	headerMarker = "【作者与机构信息】"
	bodyMarker   = "【正文与摘要片段】"
)

// BuildContent assembles the document text sent to the model: the author
// section under its marker, then the merged body chunks under theirs.
func BuildContent(header, payload string) string {
	var b strings.Builder
	b.WriteString(headerMarker)
	b.WriteString("\n")
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(bodyMarker)
	b.WriteString("\n")
	b.WriteString(payload)
	return strings.TrimSpace(b.String())
}

// buildBinaryPrompt asks for exactly one line of JSON constrained to the
// two-value taxonomy, with reasoning preambles explicitly forbidden.
func buildBinaryPrompt(title, content string) string {
	if strings.TrimSpace(title) == "" {
		title = "Unknown"
	}
	if strings.TrimSpace(content) == "" {
		content = "No Content Detected"
	}
	return fmt.Sprintf(`请判断下面文献是否属于生命科学领域。
要求：
1. 只能二选一："%s"/"%s" 或 "%s"/"%s"。
2. 必须只返回一行 JSON，包含 "domain_cn" 和 "domain_en" 两个字段。
3. 不要输出任何推理过程、解释或前言。

【文件名或标题 / Title or Filename】
%s

【文献内容 / Document Content】
%s

JSON Output:`,
		constants.LifeScienceCN, constants.LifeScienceEN,
		constants.NonLifeScienceCN, constants.NonLifeScienceEN,
		strings.TrimSpace(title), strings.TrimSpace(content))
}

// buildOpenPrompt is the legacy free-form variant: any standard academic
// domain pair is acceptable.
func buildOpenPrompt(title, content string) string {
	if strings.TrimSpace(title) == "" {
		title = "Unknown"
	}
	if strings.TrimSpace(content) == "" {
		content = "No Content Detected"
	}
	return fmt.Sprintf(`请根据下面文献的内容，判断其所属的学术领域。
要求：
1. 返回一个标准的学术领域名称（如：计算机科学/Computer Science, 生物信息学/Bioinformatics）。
2. 必须以 JSON 格式返回，包含 "domain_cn" 和 "domain_en" 两个字段。
3. 领域名称要准确、专业，不要输出推理过程。

【文件名或标题 / Title or Filename】
%s

【文献内容 / Document Content】
%s

JSON Output:`, strings.TrimSpace(title), strings.TrimSpace(content))
}
