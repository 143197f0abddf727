package hv

// Codec converts raw file bytes to the text form stored in the document and back.
// Decode(Encode(b)) must equal b for every byte sequence.
type Codec interface {
	Encode(data []byte) string
	Decode(text string) ([]byte, error)

	// DecodedLen returns the decoded size of a well-formed payload without decoding it.
	DecodedLen(text string) int64
}
