package notice

import "go.uber.org/zap"

// ZapSink logs every event through a zap logger. Outcome events land at info
// level; TypeDebug lands at debug level per the engine's invalid-input policy.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink creates a ZapSink.
//
// Precondition: logger must be non-nil.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

// Post implements Sink.
func (s *ZapSink) Post(e Event) {
	fields := []zap.Field{
		zap.String("actor", e.ActorID),
		zap.String("target", e.TargetID),
		zap.Int("amount", e.Amount),
		zap.String("kind", e.Kind),
	}
	if e.Type == TypeDebug {
		s.logger.Debug(e.Type.String(), append(fields, zap.String("detail", e.Detail))...)
		return
	}
	switch e.Type {
	case TypeLootRequest, TypeSummonRequest, TypeTerrainRequest:
		fields = append(fields, zap.Int("x", e.X), zap.Int("y", e.Y))
	}
	s.logger.Info(e.Type.String(), fields...)
}

// Multi fans each event out to every wrapped sink in order.
type Multi []Sink

// Post implements Sink.
func (m Multi) Post(e Event) {
	for _, s := range m {
		s.Post(e)
	}
}
