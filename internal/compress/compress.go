// Package compress provides the codecs used to content-encode large HTTP
// responses, notably the CSV export.
package compress

type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}
