package fieldmap

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for fieldmap events.
var (
	SignalCacheBuilt     = capitan.NewSignal("fieldmap.cache.built", "Field list built for a type")
	SignalMapComplete    = capitan.NewSignal("fieldmap.map.complete", "Object mapping finished")
	SignalFieldSkipped   = capitan.NewSignal("fieldmap.field.skipped", "Field omitted from a mapping")
	SignalEnumInvalid    = capitan.NewSignal("fieldmap.enum.invalid", "Enum literal rejected")
	SignalEncodeComplete = capitan.NewSignal("fieldmap.encode.complete", "Record encoding finished")
)

// Keys for typed event data.
var (
	KeyTypeName     = capitan.NewStringKey("type_name")
	KeyFieldName    = capitan.NewStringKey("field_name")
	KeyLiteral      = capitan.NewStringKey("literal")
	KeyContentType  = capitan.NewStringKey("content_type")
	KeyFieldCount   = capitan.NewIntKey("field_count")
	KeySkippedCount = capitan.NewIntKey("skipped_count")
	KeySize         = capitan.NewIntKey("size")
	KeyDuration     = capitan.NewDurationKey("duration")
	KeyError        = capitan.NewErrorKey("error")
)

// emitCacheBuilt emits an event when a type's field list is published.
func emitCacheBuilt(ctx context.Context, typeName string, fields int, duration time.Duration) {
	capitan.Emit(ctx, SignalCacheBuilt,
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fields),
		KeyDuration.Field(duration),
	)
}

// emitMapComplete emits an event when a mapping finishes or aborts.
func emitMapComplete(ctx context.Context, typeName string, fields, skipped int, duration time.Duration, err error) {
	fs := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fields),
		KeySkippedCount.Field(skipped),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fs = append(fs, KeyError.Field(err))
		capitan.Error(ctx, SignalMapComplete, fs...)
	} else {
		capitan.Emit(ctx, SignalMapComplete, fs...)
	}
}

// emitFieldSkipped emits an error event for a field left out of a mapping.
func emitFieldSkipped(ctx context.Context, typeName, field string, err error) {
	capitan.Error(ctx, SignalFieldSkipped,
		KeyTypeName.Field(typeName),
		KeyFieldName.Field(field),
		KeyError.Field(err),
	)
}

// emitEnumInvalid emits an error event for a rejected enum literal.
func emitEnumInvalid(ctx context.Context, typeName, literal string) {
	capitan.Error(ctx, SignalEnumInvalid,
		KeyTypeName.Field(typeName),
		KeyLiteral.Field(literal),
	)
}

// emitEncodeComplete emits an event when a record encoding finishes.
func emitEncodeComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncodeComplete, fields...)
	}
}
