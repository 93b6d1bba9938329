package qrcard

// Codec provides content-type aware marshaling.
//
// Codecs used with a Processor must accept a *Record in both Marshal and
// Unmarshal. Unmarshal replaces the record's contents and must preserve key
// order; see the yaml, msgpack, bson and xml subpackages.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}
