package domain

import "fmt"

// Chunk is one located match produced by a regex or structural rule.
// Chunks are created fresh per scan and never mutated; the ratchet compares them by count only.
type Chunk struct {
	// File is the path relative to the scan root, using forward slashes.
	File string `json:"file"`
	// Line is the 1-based line on which the match begins.
	Line int `json:"line"`
	// Text is the matched text, or a bounded excerpt for long multiline matches.
	Text string `json:"text"`
	// Context holds surrounding lines when requested.
	Context []string `json:"context,omitempty"`
}

// Position returns "file:line".
func (c Chunk) Position() string {
	return fmt.Sprintf("%s:%d", c.File, c.Line)
}

func (c Chunk) String() string {
	return fmt.Sprintf("%s:%d: %s", c.File, c.Line, c.Text)
}
