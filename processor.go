package qrcard

import (
	"context"
	"fmt"
	"time"
)

// Processor runs the sanitize/encode and decode halves of the pipeline.
// Encode and Send are egress: they sanitize a clone and marshal it.
// Decode, DecodeLink and Receive are ingress.
//
// Processors are immutable after construction and safe for concurrent use.
type Processor struct {
	codec     Codec // export codec used by Send/Receive
	tagged    Codec // tagged dialect used by Encode
	sanitizer *Sanitizer
	strict    bool
	maxDepth  int
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithCodec sets the codec used by Send and Receive. Defaults to Tagged().
func WithCodec(c Codec) ProcessorOption {
	return func(p *Processor) { p.codec = c }
}

// WithSanitizer replaces the reference sanitizer.
func WithSanitizer(s *Sanitizer) ProcessorOption {
	return func(p *Processor) { p.sanitizer = s }
}

// WithIndent makes Encode emit indented tagged text.
func WithIndent(prefix, indent string) ProcessorOption {
	return func(p *Processor) { p.tagged = TaggedIndent(prefix, indent) }
}

// WithStrict makes the flattened parser reject lines it cannot read.
func WithStrict(strict bool) ProcessorOption {
	return func(p *Processor) { p.strict = strict }
}

// WithDecodeDepth limits nesting accepted by the tagged parser. Encode and
// Send refuse records nested deeper than this, so encoded text always
// decodes with the same processor.
func WithDecodeDepth(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// NewProcessor creates a Processor with the reference sanitizer and the
// compact tagged dialect.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		codec:     Tagged(),
		tagged:    Tagged(),
		sanitizer: defaultSanitizer,
		maxDepth:  DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	if tc, ok := p.codec.(*taggedCodec); ok {
		limited := *tc
		limited.maxDepth = p.maxDepth
		p.codec = &limited
	}
	emitProcessorCreated(context.Background(), p.codec.ContentType())
	return p
}

// ContentType returns the MIME type of the export codec.
func (p *Processor) ContentType() string {
	return p.codec.ContentType()
}

// Sanitize applies the processor's sanitizer to r.
func (p *Processor) Sanitize(r *Record) (*Record, Report) {
	return p.sanitizer.SanitizeReport(r)
}

// Encode sanitizes r and serializes it in the tagged dialect.
// The same record always yields byte-identical text. A sanitized record
// nested deeper than the decode limit fails with ErrMarshal.
func (p *Processor) Encode(ctx context.Context, r *Record) (string, error) {
	data, err := p.egress(ctx, p.tagged, r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Send sanitizes r and marshals it with the export codec.
func (p *Processor) Send(ctx context.Context, r *Record) ([]byte, error) {
	return p.egress(ctx, p.codec, r)
}

func (p *Processor) egress(ctx context.Context, c Codec, r *Record) ([]byte, error) {
	start := time.Now()
	emitEncodeStart(ctx, c.ContentType())

	var (
		retErr  error
		retData []byte
		rep     Report
	)
	defer func() {
		emitEncodeComplete(ctx, c.ContentType(), len(retData), time.Since(start), rep, retErr)
	}()

	var clean *Record
	clean, rep = p.sanitizer.SanitizeReport(r)
	if d := nestingDepth(ObjectValue(clean)); d > p.maxDepth {
		retErr = newCodecError(ErrMarshal, fmt.Errorf("nesting depth %d exceeds decode limit %d", d, p.maxDepth))
		return nil, retErr
	}

	data, err := c.Marshal(clean)
	if err != nil {
		retErr = newCodecError(ErrMarshal, err)
		return nil, retErr
	}
	retData = data
	return retData, nil
}

// Decode parses payload text, choosing the dialect from its first
// non-whitespace character. Empty text yields an empty record.
func (p *Processor) Decode(ctx context.Context, text string) (*Record, error) {
	start := time.Now()
	dialect := Sniff(text)
	emitDecodeStart(ctx, string(dialect), len(text))

	var (
		r   *Record
		err error
	)
	switch dialect {
	case DialectTagged:
		r, err = parseTagged([]byte(text), p.maxDepth)
	case DialectFlattened:
		r, err = parseFlattened(text, p.strict)
	}

	emitDecodeComplete(ctx, string(dialect), r.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DecodeLink percent-decodes the payload of a carrier link and decodes it.
func (p *Processor) DecodeLink(ctx context.Context, link string) (*Record, error) {
	text, err := ParseLink(link)
	if err != nil {
		return nil, err
	}
	return p.Decode(ctx, text)
}

// Receive unmarshals an exported record with the export codec.
// It does not sanitize; records are sanitized on the way out.
func (p *Processor) Receive(ctx context.Context, data []byte) (*Record, error) {
	start := time.Now()
	emitDecodeStart(ctx, p.codec.ContentType(), len(data))

	r := NewRecord()
	err := p.codec.Unmarshal(data, r)
	if err != nil {
		err = newCodecError(ErrUnmarshal, err)
		r = nil
	}
	emitDecodeComplete(ctx, p.codec.ContentType(), r.Len(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}
	return r, nil
}

var defaultProcessor = &Processor{
	codec:     Tagged(),
	tagged:    Tagged(),
	sanitizer: defaultSanitizer,
	maxDepth:  DefaultMaxDepth,
}

// Encode sanitizes r with the reference policy and returns compact tagged text.
func Encode(r *Record) (string, error) {
	return defaultProcessor.Encode(context.Background(), r)
}

// Decode parses tagged or flattened payload text.
func Decode(text string) (*Record, error) {
	return defaultProcessor.Decode(context.Background(), text)
}
