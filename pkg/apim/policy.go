package apim

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// DefaultModelsKey is the policy variable that declares the supported models.
const DefaultModelsKey = "supportedModels"

const escapedQuote = "&quot;"

type extractConfig struct {
	key            string
	decodeEntities bool
	escapedQuotes  bool
	caseSensitive  bool
	logger         Logger
}

// ExtractOption tunes how ExtractSupportedModels reads a policy document.
type ExtractOption func(*extractConfig)

// WithKey sets the variable name that introduces the model array.
func WithKey(key string) ExtractOption {
	return func(c *extractConfig) {
		c.key = key
	}
}

// WithEntityDecoding toggles HTML entity decoding of the whole document
// before scanning. Enabled by default.
func WithEntityDecoding(enabled bool) ExtractOption {
	return func(c *extractConfig) {
		c.decodeEntities = enabled
	}
}

// WithEscapedQuotes toggles acceptance of &quot; as a string delimiter.
// After entity decoding this only matters for double-escaped documents.
// Enabled by default.
func WithEscapedQuotes(enabled bool) ExtractOption {
	return func(c *extractConfig) {
		c.escapedQuotes = enabled
	}
}

// WithCaseSensitiveKey makes the key match exact. Keys match regardless of
// case by default.
func WithCaseSensitiveKey(enabled bool) ExtractOption {
	return func(c *extractConfig) {
		c.caseSensitive = enabled
	}
}

// WithExtractLogger receives the warning emitted when no models are found.
func WithExtractLogger(logger Logger) ExtractOption {
	return func(c *extractConfig) {
		c.logger = logger
	}
}

// ExtractSupportedModels returns the sorted, distinct model names declared in
// a policy document as
//
//	"supportedModels", new JArray("gpt-4o", "gpt-4o-mini")
//
// Every declaration in the document contributes. The key itself and empty
// literals are never returned. A document without declarations yields an
// empty slice and a warning on the configured logger.
func ExtractSupportedModels(policy string, opts ...ExtractOption) []string {
	cfg := &extractConfig{
		key:            DefaultModelsKey,
		decodeEntities: true,
		escapedQuotes:  true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	text := policy
	if cfg.decodeEntities {
		text = html.UnescapeString(text)
	}

	found := make(map[string]struct{})
	scanner := &policyScanner{src: text, cfg: cfg}

	for scanner.nextKey() {
		literals, ok := scanner.arrayLiterals()
		if !ok {
			continue
		}

		for _, literal := range literals {
			if literal == "" || literal == cfg.key {
				continue
			}

			found[literal] = struct{}{}
		}
	}

	models := make([]string, 0, len(found))
	for model := range found {
		models = append(models, model)
	}

	sort.Strings(models)

	if len(models) == 0 && cfg.logger != nil {
		cfg.logger.Warn("no supported models found in policy; check that it declares a model array", map[string]interface{}{
			"key": cfg.key,
		})
	}

	return models
}

// FormatSupportedModels renders models in the declaration form read by
// ExtractSupportedModels.
func FormatSupportedModels(models []string) string {
	quoted := make([]string, len(models))
	for i, model := range models {
		quoted[i] = `"` + model + `"`
	}

	return `"` + DefaultModelsKey + `", new JArray(` + strings.Join(quoted, ", ") + `)`
}

// policyScanner walks a decoded policy looking for
//
//	KEY (ws | '"' | &quot;)* ',' ws* 'new' ws+ 'JArray' ws* '(' literals ')'
//
// where literals are strings delimited by '"' or &quot;. The list ends at the
// first ')' outside a literal.
type policyScanner struct {
	src string
	pos int
	cfg *extractConfig
}

// nextKey advances past the next occurrence of the key.
func (s *policyScanner) nextKey() bool {
	key := s.cfg.key
	if key == "" {
		return false
	}

	for i := s.pos; i+len(key) <= len(s.src); i++ {
		candidate := s.src[i : i+len(key)]
		if candidate == key || (!s.cfg.caseSensitive && strings.EqualFold(candidate, key)) {
			s.pos = i + len(key)

			return true
		}
	}

	s.pos = len(s.src)

	return false
}

// arrayLiterals parses the declaration following a key. On mismatch the
// scanner stays just past the key so the search resumes from there.
func (s *policyScanner) arrayLiterals() ([]string, bool) {
	i := s.skipQuotes(s.pos)
	if i >= len(s.src) || s.src[i] != ',' {
		return nil, false
	}

	i = skipSpace(s.src, i+1)

	i, ok := s.word(i, "new")
	if !ok || i >= len(s.src) || !isSpace(s.src[i]) {
		return nil, false
	}

	i, ok = s.word(skipSpace(s.src, i), "JArray")
	if !ok {
		return nil, false
	}

	i = skipSpace(s.src, i)
	if i >= len(s.src) || s.src[i] != '(' {
		return nil, false
	}

	literals, end, ok := s.literalList(i + 1)
	if !ok {
		return nil, false
	}

	s.pos = end

	return literals, true
}

// literalList collects string literals up to the closing parenthesis and
// returns the offset just past it.
func (s *policyScanner) literalList(start int) ([]string, int, bool) {
	var literals []string

	i := start
	for i < len(s.src) {
		switch {
		case s.src[i] == ')':
			return literals, i + 1, true
		case s.src[i] == '"':
			end := strings.IndexByte(s.src[i+1:], '"')
			if end < 0 {
				return nil, 0, false
			}

			literals = append(literals, s.src[i+1:i+1+end])
			i += end + 2
		case s.cfg.escapedQuotes && strings.HasPrefix(s.src[i:], escapedQuote):
			body := i + len(escapedQuote)

			end := strings.Index(s.src[body:], escapedQuote)
			if end < 0 {
				return nil, 0, false
			}

			literals = append(literals, s.src[body:body+end])
			i = body + end + len(escapedQuote)
		default:
			i++
		}
	}

	return nil, 0, false
}

// skipQuotes skips the whitespace and quote characters that close a quoted key.
func (s *policyScanner) skipQuotes(i int) int {
	for i < len(s.src) {
		switch {
		case isSpace(s.src[i]) || s.src[i] == '"':
			i++
		case s.cfg.escapedQuotes && strings.HasPrefix(s.src[i:], escapedQuote):
			i += len(escapedQuote)
		default:
			return i
		}
	}

	return i
}

// word matches a keyword case-insensitively at offset i.
func (s *policyScanner) word(i int, keyword string) (int, bool) {
	if i+len(keyword) > len(s.src) || !strings.EqualFold(s.src[i:i+len(keyword)], keyword) {
		return i, false
	}

	return i + len(keyword), true
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}

	return i
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}

	return false
}
