package knowledge

import (
	"strings"
	"sync"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return tk
}

type Chunk struct {
	Text      string
	TokenSize int
	Index     int
}

type ChunkerConfig struct {
	MaxTokens     int
	OverlapTokens int
}

func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{MaxTokens: 400, OverlapTokens: 40}
}

// ChunkText splits article text into token-bounded chunks along
// sentence boundaries, with a token overlap between adjacent chunks so
// retrieval does not lose context at the seams. Sentence detection is
// Unicode-aware and handles CJK punctuation.
func ChunkText(text string, cfg ChunkerConfig) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []Chunk
	var buf strings.Builder
	bufTokens := 0
	index := 0

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Text:      strings.TrimSpace(buf.String()),
			TokenSize: bufTokens,
			Index:     index,
		})
		index++
		buf.Reset()
		bufTokens = 0
	}

	for i, sentence := range sentences {
		tokens := countTokens(sentence)

		// A single sentence larger than the budget gets sliced on
		// raw token boundaries.
		if tokens > cfg.MaxTokens {
			flush()
			for _, sc := range sliceByTokens(sentence, cfg.MaxTokens) {
				chunks = append(chunks, Chunk{
					Text:      strings.TrimSpace(sc.Text),
					TokenSize: sc.TokenSize,
					Index:     index,
				})
				index++
			}
			continue
		}

		if bufTokens+tokens > cfg.MaxTokens && buf.Len() > 0 {
			flush()
			overlap := overlapTail(sentences, i, cfg.OverlapTokens)
			buf.WriteString(overlap)
			bufTokens = countTokens(overlap)
		}

		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(sentence)
		bufTokens += tokens
	}
	flush()

	return chunks
}

// sliceByTokens splits text by encoding it and cutting the token array.
func sliceByTokens(text string, maxTokens int) []Chunk {
	enc := getTokenizer()
	tokens := enc.Encode(text, nil, nil)

	var chunks []Chunk
	for i := 0; i < len(tokens); i += maxTokens {
		end := i + maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		part := tokens[i:end]
		chunks = append(chunks, Chunk{
			Text:      enc.Decode(part),
			TokenSize: len(part),
		})
	}
	return chunks
}

var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true, '．': true, '…': true,
}

func splitSentences(text string) []string {
	var sentences []string

	for _, para := range splitParagraphs(text) {
		var current strings.Builder
		runes := []rune(para)

		for i, r := range runes {
			current.WriteRune(r)
			if !sentenceEnders[r] {
				continue
			}
			// Only break when followed by whitespace, end of text, or
			// a CJK rune (CJK text omits spaces after punctuation).
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) || isCJK(runes[i+1]) {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 && text != "" {
		return []string{text}
	}
	return sentences
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		// Soft-wrapped lines inside a paragraph join with a space.
		p = strings.TrimSpace(strings.ReplaceAll(p, "\n", " "))
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// CountTokens estimates the token count of text under the cl100k_base
// encoding. Shared by chunking and request-size validation.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(getTokenizer().Encode(text, nil, nil))
}

func countTokens(text string) int {
	return CountTokens(text)
}

// overlapTail returns the trailing sentences before index i totalling
// roughly targetTokens.
func overlapTail(sentences []string, i, targetTokens int) string {
	if i == 0 || targetTokens <= 0 {
		return ""
	}

	var tail []string
	tokens := 0
	for j := i - 1; j >= 0 && tokens < targetTokens; j-- {
		tail = append([]string{sentences[j]}, tail...)
		tokens += countTokens(sentences[j])
	}
	return strings.Join(tail, " ")
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
