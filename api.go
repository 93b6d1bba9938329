// Package qrcard turns user records into scannable payloads and back.
//
// A Record is an ordered mapping of field names to Values: text, number,
// boolean, null, nested record, or array. Records leave the process only
// after a Sanitizer has stripped the sensitive fields:
//
//	password, token, authToken, apiKey, secret, cvv, cardNumber
//
// Names match exactly. Nested objects are sanitized at every depth; array
// contents keep their keys unless WithArraySanitization is set. Objects and
// arrays nested past the depth limit are dropped.
//
// # Dialects
//
// Encode writes the tagged dialect, an ordered JSON object that round-trips
// every value kind. Decode also reads the flattened dialect used by older
// scanners:
//
//	Profile Information
//	Name: Jane Doe
//	Age: 34
//	Active: true
//
// Text whose first non-space character is '{' is parsed as tagged and
// fails with ErrMalformedStructured when invalid. Anything else is
// flattened: lines without ": " are skipped, labels are normalized to
// camel-like keys ("Start Date" becomes "startDate") and values are coerced
// to booleans and numbers where they read as such.
//
// # Basic Usage
//
//	r, _ := qrcard.FromStruct(user)
//	text, _ := qrcard.Encode(r)               // sanitized, compact
//	link := qrcard.Link(baseURL, text)        // https://host/scan?data=%7B...
//
//	proc := qrcard.NewProcessor()
//	back, err := proc.DecodeLink(ctx, link)
//
// # Export Codecs
//
// Processor.Send and Processor.Receive use a pluggable Codec. The tagged
// codec lives in this package; the others are subpackages:
//
//   - yaml - YAML mapping (application/yaml)
//   - msgpack - MessagePack map (application/msgpack)
//   - bson - BSON document (application/bson)
//   - xml - field elements (application/xml)
//
// All of them keep key order and value kinds.
//
// # Masking
//
// Built-in content-aware maskers, applied with WithMask:
//
//   - email: alice@example.com → a***@example.com
//   - phone: +977-9808370638 → ***-***-0638
//   - card: 4111-1111-1111-1111 → ****-****-****-1111
//   - name: Jane Doe → J*** D**
//   - last4: 4111111111111111 → ************1111
//
// # Signals
//
// Processors emit capitan signals for creation, sanitize passes, and the
// start and end of every encode and decode. Payload contents are never
// attached; hash payloads with a Hasher (see HasherFor) to correlate them
// in logs.
package qrcard
