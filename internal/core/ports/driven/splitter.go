package driven

// Splitter cuts a document into index-sized chunks.
type Splitter interface {
	// Split returns chunk texts with their chunk type ("text" or "table").
	Split(content string) []SplitSegment
}

// SplitSegment is one chunk produced by a Splitter.
type SplitSegment struct {
	// Text is the chunk content.
	Text string

	// Type is "text" or "table".
	Type string
}
