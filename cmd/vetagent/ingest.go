package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/providers/knowledge"
	"github.com/vetevidence/vetagent/pkg/log"
)

var (
	ingestTitle   string
	ingestSource  string
	ingestJournal string
	ingestYear    int
	ingestURL     string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Chunk, embed and index literature documents for vector search",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		a := newApp(ctx)
		defer a.db.Close()

		if a.embedder == nil {
			logger.Warn().Msg("no embedding key configured, documents will be keyword-searchable only")
		}

		cfg := knowledge.ChunkerConfig{
			MaxTokens:     a.litCfg.ChunkTokens,
			OverlapTokens: a.litCfg.ChunkOverlap,
		}

		for _, path := range args {
			if err := ingestFile(cmd, a, path, cfg); err != nil {
				return fmt.Errorf("ingest %s: %w", path, err)
			}
		}
		return nil
	},
}

func ingestFile(cmd *cobra.Command, a *app, path string, cfg knowledge.ChunkerConfig) error {
	ctx := cmd.Context()
	logger := log.FromCtx(ctx)

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	title := ingestTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	pieces := knowledge.ChunkText(string(raw), cfg)
	if len(pieces) == 0 {
		return fmt.Errorf("document is empty")
	}

	chunks := make([]core.LiteratureChunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = core.LiteratureChunk{Index: p.Index, Content: p.Text}
	}

	if a.embedder != nil {
		texts := make([]string, len(pieces))
		for i, p := range pieces {
			texts[i] = p.Text
		}
		vectors, err := a.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}

	doc := core.LiteratureDocument{
		Title:   title,
		Source:  ingestSource,
		Journal: ingestJournal,
		Year:    ingestYear,
		URL:     ingestURL,
	}
	docID, err := a.litRepo.SaveDocument(ctx, doc, chunks)
	if err != nil {
		return err
	}

	logger.Info().
		Int64("document_id", docID).
		Str("title", title).
		Int("chunks", len(chunks)).
		Msg("document indexed")
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %q (%d chunks)\n", title, len(chunks))
	return nil
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title (defaults to the file name)")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "manual", "origin label stored with the document")
	ingestCmd.Flags().StringVar(&ingestJournal, "journal", "", "journal name")
	ingestCmd.Flags().IntVar(&ingestYear, "year", 0, "publication year")
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "canonical URL")
	rootCmd.AddCommand(ingestCmd)
}
