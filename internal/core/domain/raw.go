package domain

import "fmt"

// RawDocument is what a connector fetched, before any text is extracted.
type RawDocument struct {
	Provenance Provenance

	// URI is a file path or URL and doubles as the citation source.
	URI      string
	MIMEType string
	Content  []byte
	Metadata map[string]any
}

type ChangeType int

const (
	ChangeCreated ChangeType = iota
	ChangeUpdated
	ChangeDeleted
)

var changeNames = [...]string{"created", "updated", "deleted"}

func (c ChangeType) String() string {
	if c < 0 || int(c) >= len(changeNames) {
		return fmt.Sprintf("change(%d)", int(c))
	}
	return changeNames[c]
}

// RawDocumentChange is emitted by a watching connector. A deletion carries
// only the URI and provenance.
type RawDocumentChange struct {
	Type     ChangeType
	Document RawDocument
}
