package semantic

// SearchResult is a single similarity-search hit. Results come back from
// Qdrant ordered by descending score; ties follow the index's stable order.
type SearchResult struct {
	ID      string         `json:"id"`
	Score   float32        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// VectorRecord is a single point to store: identifier, embedding, and a copy
// of the record's displayable attributes. Upsert replaces vector and payload
// together, never partially.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Payload   map[string]any
}

// CollectionInfo is a read-only diagnostic snapshot of the collection.
type CollectionInfo struct {
	PointsCount uint64 `json:"points_count"`
	Status      string `json:"status"`
}
