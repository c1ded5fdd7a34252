package layout

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func zapIndex(i NodeIndex) zap.Field { return zap.Int("node", int(i)) }

func zapScrollbar(key string, s ScrollbarInfo) zap.Field {
	return zap.Object(key, zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddBool("horizontal", s.NeedsHorizontal)
		enc.AddBool("vertical", s.NeedsVertical)
		enc.AddFloat64("width", s.ScrollbarWidth)
		enc.AddFloat64("height", s.ScrollbarHeight)
		return nil
	}))
}
