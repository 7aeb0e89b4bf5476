package llm

import "context"

// Provider is a prompt-in/text-out capability. The returned text may be
// malformed, chatty or empty; callers treat any of that as parseable-or-not
// input, never as a protocol violation.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Result is the normalized classification. Never zero-valued: the classifier
// always resolves to a valid taxonomy pair.
type Result struct {
	DomainCN string `json:"domain_cn"`
	DomainEN string `json:"domain_en"`
}

// ClassifyRequest carries everything the classifier needs for one document.
type ClassifyRequest struct {
	Title   string // file name or document title
	Header  string // author/affiliation section
	Payload string // merged body chunks, already budget-bounded
}
