package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minghan-wu/litdomain/constants"
	"github.com/minghan-wu/litdomain/internal/extract"
	"github.com/minghan-wu/litdomain/internal/llm"
	"github.com/minghan-wu/litdomain/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubExtractor struct {
	res extract.ExtractionResult
}

func (s *stubExtractor) Run(context.Context, string) extract.ExtractionResult { return s.res }

// capturingProvider answers every prompt with the same response and keeps the
// prompts for inspection.
type capturingProvider struct {
	response string
	calls    int
	prompts  []string
}

func (p *capturingProvider) Complete(_ context.Context, prompt string) (string, error) {
	p.calls++
	p.prompts = append(p.prompts, prompt)
	return p.response, nil
}

func (p *capturingProvider) Name() string { return "capturing" }

// memRepo is an in-memory DomainRepository for wiring tests.
type memRepo struct {
	mu        sync.Mutex
	domains   map[string]string
	upsertErr error
}

func newMemRepo() *memRepo { return &memRepo{domains: map[string]string{}} }

func (m *memRepo) Upsert(_ context.Context, filePath, domain string) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domains[abs] = domain
	return nil
}

func (m *memRepo) QueryByDomain(context.Context, string) ([]repository.DomainRecord, error) {
	return nil, nil
}
func (m *memRepo) ListDomains(context.Context) ([]string, error) { return nil, nil }
func (m *memRepo) ListAll(context.Context) ([]repository.DomainRecord, error) {
	return nil, nil
}

// documentContent pulls the text between the content heading and the JSON
// instruction out of a captured prompt.
func documentContent(t *testing.T, prompt string) string {
	t.Helper()
	const heading = "【文献内容 / Document Content】\n"
	start := strings.Index(prompt, heading)
	require.GreaterOrEqual(t, start, 0)
	rest := prompt[start+len(heading):]
	end := strings.Index(rest, "\n\nJSON Output:")
	require.GreaterOrEqual(t, end, 0)
	return rest[:end]
}

func TestProcess_EndToEnd(t *testing.T) {
	text := "摘要\n本文研究了一种新的材料合成方法。\n\n" + strings.Repeat("x", 5000)
	ext := &stubExtractor{res: extract.ExtractionResult{
		Text:     text,
		Tier:     constants.TierTextLayer,
		Accepted: true,
	}}
	provider := &capturingProvider{response: `{"domain_cn": "非生命科学", "domain_en": "Non-Life Science"}`}
	classifier := llm.NewClassifier(llm.ClassifierConfig{}, provider, discardLogger())
	repo := newMemRepo()

	cfg := Config{ChunkSize: 800, ChunkOverlap: 100, MaxCharsForLLM: 3000, AuthorSectionChars: 1200}
	proc := NewProcessor(cfg, ext, classifier, repo, discardLogger())

	path := filepath.Join(t.TempDir(), "materials.pdf")
	res, err := proc.Process(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, string(constants.TierTextLayer), res.Tier)
	assert.Equal(t, "materials.pdf", res.FileName)
	assert.True(t, res.Persisted)
	assert.Equal(t, constants.NonLifeScienceCN, res.Classification.DomainCN)
	assert.Equal(t, constants.NonLifeScienceEN, res.Classification.DomainEN)

	abs, _ := filepath.Abs(path)
	assert.Equal(t, constants.NonLifeScienceCN, repo.domains[abs])

	// the prompt carries both section markers and stays inside the payload cap
	require.Equal(t, 1, provider.calls)
	content := documentContent(t, provider.prompts[0])
	assert.Contains(t, content, "【作者与机构信息】")
	assert.Contains(t, content, "【正文与摘要片段】")
	assert.Contains(t, content, "摘要")
	assert.LessOrEqual(t, utf8.RuneCountInString(content), 3000)
	assert.Greater(t, utf8.RuneCountInString(content), 1000, "payload should be filled, not starved")
}

func TestProcess_EmptyExtractionSkipsProvider(t *testing.T) {
	ext := &stubExtractor{res: extract.ExtractionResult{Tier: constants.TierNone}}
	provider := &capturingProvider{response: `{"domain_cn": "生命科学", "domain_en": "Life Science"}`}
	classifier := llm.NewClassifier(llm.ClassifierConfig{}, provider, discardLogger())
	repo := newMemRepo()
	proc := NewProcessor(Config{}, ext, classifier, repo, discardLogger())

	path := filepath.Join(t.TempDir(), "scanned_blank.pdf")
	res, err := proc.Process(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 0, provider.calls, "no text, no provider call")
	assert.Equal(t, string(constants.TierNone), res.Tier)
	assert.Equal(t, 0, res.ExtractedChars)
	assert.Equal(t, constants.NonLifeScienceCN, res.Classification.DomainCN)

	abs, _ := filepath.Abs(path)
	assert.Equal(t, constants.NonLifeScienceCN, repo.domains[abs], "one record per file even on empty extraction")
}

func TestProcess_ShortDocumentAllHeader(t *testing.T) {
	ext := &stubExtractor{res: extract.ExtractionResult{
		Text:     "基因表达调控研究\n张三，李四\n某大学生命科学学院",
		Tier:     constants.TierTextLayer,
		Accepted: true,
	}}
	provider := &capturingProvider{response: `{"domain_cn": "生命科学", "domain_en": "Life Science"}`}
	classifier := llm.NewClassifier(llm.ClassifierConfig{}, provider, discardLogger())
	proc := NewProcessor(Config{}, ext, classifier, newMemRepo(), discardLogger())

	res, err := proc.Process(context.Background(), filepath.Join(t.TempDir(), "short.pdf"))
	require.NoError(t, err)

	assert.Equal(t, constants.LifeScienceCN, res.Classification.DomainCN)
	require.Equal(t, 1, provider.calls)
	content := documentContent(t, provider.prompts[0])
	assert.Contains(t, content, "基因表达调控研究")
}

func TestProcess_PersistFailureKeepsClassification(t *testing.T) {
	ext := &stubExtractor{res: extract.ExtractionResult{
		Text:     strings.Repeat("clinical trial data ", 30),
		Tier:     constants.TierOCRPrimary,
		Accepted: true,
	}}
	provider := &capturingProvider{response: `{"domain_cn": "生命科学", "domain_en": "Life Science"}`}
	classifier := llm.NewClassifier(llm.ClassifierConfig{}, provider, discardLogger())
	repo := newMemRepo()
	repo.upsertErr = errors.New("disk full")
	proc := NewProcessor(Config{}, ext, classifier, repo, discardLogger())

	res, err := proc.Process(context.Background(), filepath.Join(t.TempDir(), "trial.pdf"))

	require.Error(t, err)
	assert.False(t, res.Persisted)
	// the classification survives so the caller can retry the write
	assert.Equal(t, constants.LifeScienceCN, res.Classification.DomainCN)
}
