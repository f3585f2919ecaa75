package knowledge

import (
	"strings"
	"testing"
)

func TestChunkText(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		cfg            ChunkerConfig
		expectedChunks []string
	}{
		{
			name:           "empty input",
			text:           "",
			cfg:            DefaultChunkerConfig(),
			expectedChunks: nil,
		},
		{
			name:           "whitespace only",
			text:           "   \n\t   ",
			cfg:            DefaultChunkerConfig(),
			expectedChunks: nil,
		},
		{
			name:           "single sentence fits",
			text:           "Hello world.",
			cfg:            ChunkerConfig{MaxTokens: 10},
			expectedChunks: []string{"Hello world."},
		},
		{
			name:           "two sentences share one chunk",
			text:           "Hello world. How are you?",
			cfg:            ChunkerConfig{MaxTokens: 10},
			expectedChunks: []string{"Hello world. How are you?"},
		},
		{
			name: "split on sentence boundary",
			text: "First sentence. Second sentence.",
			// "First sentence." encodes to ~3 tokens.
			cfg: ChunkerConfig{MaxTokens: 3},
			expectedChunks: []string{
				"First sentence.",
				"Second sentence.",
			},
		},
		{
			name: "overlap carries the previous sentence",
			text: "Sentence one. Sentence two. Sentence three.",
			cfg:  ChunkerConfig{MaxTokens: 6, OverlapTokens: 3},
			expectedChunks: []string{
				"Sentence one. Sentence two.",
				"Sentence two. Sentence three.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkText(tt.text, tt.cfg)
			if len(chunks) != len(tt.expectedChunks) {
				t.Fatalf("got %d chunks, want %d: %+v", len(chunks), len(tt.expectedChunks), chunks)
			}
			for i, want := range tt.expectedChunks {
				if chunks[i].Text != want {
					t.Errorf("chunk %d = %q, want %q", i, chunks[i].Text, want)
				}
				if chunks[i].Index != i {
					t.Errorf("chunk %d has index %d", i, chunks[i].Index)
				}
			}
		})
	}
}

func TestChunkText_OversizedSentence(t *testing.T) {
	// A single sentence far above the budget must be sliced instead of
	// producing one giant chunk.
	sentence := strings.Repeat("azotemia hyperphosphatemia proteinuria ", 40) + "."
	chunks := ChunkText(sentence, ChunkerConfig{MaxTokens: 50})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.TokenSize > 50 {
			t.Errorf("chunk %d has %d tokens, budget is 50", i, c.TokenSize)
		}
	}
}

func TestChunkText_CJKSentences(t *testing.T) {
	text := "犬の慢性腎臓病は高齢犬に多い。早期診断が重要である。"
	chunks := ChunkText(text, ChunkerConfig{MaxTokens: 500})
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "早期診断") {
		t.Errorf("chunk lost content: %q", chunks[0].Text)
	}
}
