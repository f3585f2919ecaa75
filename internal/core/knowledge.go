package core

// SourceType identifies the knowledge source an item came from.
type SourceType string

const (
	SourceEncyclopedia SourceType = "vetpro"
	SourceVector       SourceType = "literature"
	SourcePubMed       SourceType = "pubmed"
)

// KnowledgeCitation carries the displayable provenance of a knowledge item.
type KnowledgeCitation struct {
	Title      string     `json:"title"`
	Source     string     `json:"source"`
	Year       int        `json:"year,omitempty"`
	PMID       string     `json:"pmid,omitempty"`
	Journal    string     `json:"journal,omitempty"`
	URL        string     `json:"url,omitempty"`
	SourceType SourceType `json:"sourceType"`
}

// LiteratureDocument is an ingested article in the local index.
type LiteratureDocument struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	TitleLocal string `json:"titleLocal,omitempty"`
	Source     string `json:"source"`
	Journal    string `json:"journal,omitempty"`
	Year       int    `json:"year,omitempty"`
	URL        string `json:"url,omitempty"`
	Slug       string `json:"slug,omitempty"`
}

// LiteratureChunk is one embeddable slice of a document.
type LiteratureChunk struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"documentId"`
	Index      int       `json:"index"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
}

// LiteratureHit is a search result from the local index. Similarity is
// cosine similarity in [0,1] for vector search; keyword search leaves
// it at the rank-derived estimate.
type LiteratureHit struct {
	Document   LiteratureDocument `json:"document"`
	Content    string             `json:"content"`
	Similarity float64            `json:"similarity"`
}

// KnowledgeItem is one retrieval hit in the fusion engine's common shape.
// RelevanceScore is assigned by the merger (trust weight x position
// decay), not by the origin gateway.
type KnowledgeItem struct {
	Source         SourceType        `json:"source"`
	Title          string            `json:"title"`
	TitleLocal     string            `json:"titleLocal,omitempty"`
	Content        string            `json:"content"`
	Slug           string            `json:"slug,omitempty"`
	Year           int               `json:"year,omitempty"`
	Similarity     float64           `json:"similarity,omitempty"`
	RelevanceScore float64           `json:"relevanceScore"`
	Citation       KnowledgeCitation `json:"citation"`
}
