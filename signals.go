package qrcard

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for pipeline events.
var (
	SignalProcessorCreated = capitan.NewSignal("qrcard.processor.created", "Processor instantiated")
	SignalSanitizeComplete = capitan.NewSignal("qrcard.sanitize.complete", "Sanitize pass finished")
	SignalEncodeStart      = capitan.NewSignal("qrcard.encode.start", "Encode operation beginning")
	SignalEncodeComplete   = capitan.NewSignal("qrcard.encode.complete", "Encode operation finished")
	SignalDecodeStart      = capitan.NewSignal("qrcard.decode.start", "Decode operation beginning")
	SignalDecodeComplete   = capitan.NewSignal("qrcard.decode.complete", "Decode operation finished")
)

// Keys for typed event data.
var (
	KeyContentType  = capitan.NewStringKey("content_type")
	KeyDialect      = capitan.NewStringKey("dialect")
	KeySize         = capitan.NewIntKey("size")
	KeyFieldCount   = capitan.NewIntKey("field_count")
	KeyDuration     = capitan.NewDurationKey("duration")
	KeyError        = capitan.NewErrorKey("error")
	KeyRemovedCount = capitan.NewIntKey("removed_count")
	KeyMaskedCount  = capitan.NewIntKey("masked_count")
	KeyDroppedCount = capitan.NewIntKey("dropped_count")
)

func emitProcessorCreated(ctx context.Context, contentType string) {
	capitan.Emit(ctx, SignalProcessorCreated,
		KeyContentType.Field(contentType),
	)
}

func emitSanitizeComplete(ctx context.Context, fields int, rep Report) {
	capitan.Emit(ctx, SignalSanitizeComplete,
		KeyFieldCount.Field(fields),
		KeyRemovedCount.Field(rep.Removed),
		KeyMaskedCount.Field(rep.Masked),
		KeyDroppedCount.Field(rep.Dropped),
	)
}

func emitEncodeStart(ctx context.Context, contentType string) {
	capitan.Emit(ctx, SignalEncodeStart,
		KeyContentType.Field(contentType),
	)
}

// emitEncodeComplete emits an event when encode finishes.
func emitEncodeComplete(ctx context.Context, contentType string, size int, duration time.Duration, rep Report, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeySize.Field(size),
		KeyDuration.Field(duration),
		KeyRemovedCount.Field(rep.Removed),
		KeyMaskedCount.Field(rep.Masked),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncodeComplete, fields...)
	}
}

func emitDecodeStart(ctx context.Context, dialect string, size int) {
	capitan.Emit(ctx, SignalDecodeStart,
		KeyDialect.Field(dialect),
		KeySize.Field(size),
	)
}

// emitDecodeComplete emits an event when decode finishes.
func emitDecodeComplete(ctx context.Context, dialect string, fieldCount int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyDialect.Field(dialect),
		KeyFieldCount.Field(fieldCount),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecodeComplete, fields...)
	}
}
