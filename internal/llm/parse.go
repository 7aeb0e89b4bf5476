package llm

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// resultSchema constrains a candidate fragment to the two required keys.
const resultSchema = `{
	"type": "object",
	"required": ["domain_cn", "domain_en"],
	"properties": {
		"domain_cn": {"type": "string", "minLength": 1},
		"domain_en": {"type": "string", "minLength": 1}
	}
}`

var resultCompiled = jsonschema.MustCompileString("classification.json", resultSchema)

// stripThinking drops a leading reasoning preamble. Local models wrap it in
// <think>...</think>; everything up to and including the closing marker goes.
func stripThinking(s string) string {
	const closer = "</think>"
	if idx := strings.LastIndex(s, closer); idx >= 0 {
		return strings.TrimSpace(s[idx+len(closer):])
	}
	return s
}

// ParseResponse extracts a (domain_cn, domain_en) pair from raw model output.
// Strategies in priority order: schema-valid {...} fragments, then the legacy
// pipe-delimited "cn|en" form. Returns ok=false when nothing parses.
func ParseResponse(raw string) (Result, bool) {
	s := strings.TrimSpace(stripThinking(raw))
	if s == "" {
		return Result{}, false
	}

	if r, ok := scanJSONFragments(s); ok {
		return r, true
	}

	// legacy "生命科学|Life Science" output
	if strings.Contains(s, "|") {
		parts := strings.SplitN(s, "|", 2)
		cn := strings.TrimSpace(parts[0])
		en := strings.TrimSpace(parts[1])
		// keep only the first line of each side; chatty models append more
		cn = firstLine(cn)
		en = firstLine(en)
		if cn != "" && en != "" {
			return Result{DomainCN: cn, DomainEN: en}, true
		}
	}

	return Result{}, false
}

// scanJSONFragments walks every balanced {...} fragment in s and returns the
// first one that contains both keys and validates against the schema.
func scanJSONFragments(s string) (Result, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		end := matchBrace(s, i)
		if end < 0 {
			continue
		}
		frag := s[i : end+1]
		if !strings.Contains(frag, "domain_cn") || !strings.Contains(frag, "domain_en") {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(frag), &v); err != nil {
			continue
		}
		if err := resultCompiled.Validate(v); err != nil {
			continue
		}
		var r Result
		if err := json.Unmarshal([]byte(frag), &r); err != nil {
			continue
		}
		return r, true
	}
	return Result{}, false
}

// matchBrace returns the index of the brace closing s[open], or -1.
func matchBrace(s string, open int) int {
	depth := 0
	inStr := false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch c {
			case '\\':
				i++
			case '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func firstLine(s string) string {
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// CleanLabel normalizes a free-form label: first line or clause, common
// prefixes and quotes stripped. Used by the legacy open-taxonomy mode.
func CleanLabel(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, sep := range []string{"\n", "，", "。", ",", "."} {
		if idx := strings.Index(s, sep); idx >= 0 {
			s = strings.TrimSpace(s[:idx])
		}
	}
	for _, prefix := range []string{"领域：", "学科：", "类别：", "领域", "学科", "类别"} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			s = strings.TrimSpace(rest)
			break
		}
	}
	return strings.Trim(s, "\"' \t")
}
