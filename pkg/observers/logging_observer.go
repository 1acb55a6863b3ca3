// Package observers provides observers for monitoring state machine events
package observers

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/anggasct/hfsm"
)

// LoggingObserver logs state machine events through zap. Entries and exits
// are logged at the observer's level; requests and ticks one level lower.
type LoggingObserver struct {
	logger *zap.Logger
	level  zapcore.Level
	mutex  sync.RWMutex
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *zap.Logger, level zapcore.Level) *LoggingObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingObserver{
		logger: logger.Named("observer"),
		level:  level,
	}
}

// SetLevel changes the level state changes are logged at
func (o *LoggingObserver) SetLevel(level zapcore.Level) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.level = level
}

func (o *LoggingObserver) log(level zapcore.Level, msg string, fields ...zap.Field) {
	if ce := o.logger.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (o *LoggingObserver) levels() (zapcore.Level, zapcore.Level) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	detail := o.level - 1
	if detail < zapcore.DebugLevel {
		detail = zapcore.DebugLevel
	}
	return o.level, detail
}

// OnStateEnter logs state entry
func (o *LoggingObserver) OnStateEnter(state string) {
	level, _ := o.levels()
	o.log(level, "entering state", zap.String("state", state))
}

// OnStateExit logs state exit
func (o *LoggingObserver) OnStateExit(state string) {
	level, _ := o.levels()
	o.log(level, "exiting state", zap.String("state", state))
}

// OnRequest logs a transition request
func (o *LoggingObserver) OnRequest(req hfsm.Request) {
	_, detail := o.levels()
	o.log(detail, "transition request",
		zap.Stringer("kind", req.Kind),
		zap.String("target", req.TargetTag),
		zap.String("origin", req.OriginTag),
		zap.Stringer("phase", req.Phase),
	)
}

// OnRequestDropped logs a rejected request
func (o *LoggingObserver) OnRequestDropped(err error) {
	o.log(zapcore.WarnLevel, "transition request dropped", zap.Error(err))
}

// OnTickCompleted logs the configuration at the end of a tick
func (o *LoggingObserver) OnTickCompleted(tick uint64, active []string) {
	_, detail := o.levels()
	o.log(detail, "tick completed", zap.Uint64("tick", tick), zap.Strings("active", active))
}

// OnError logs errors
func (o *LoggingObserver) OnError(err error) {
	o.log(zapcore.ErrorLevel, "observer error", zap.Error(err))
}

// OnMachineStarted logs machine start
func (o *LoggingObserver) OnMachineStarted() {
	level, _ := o.levels()
	o.log(level, "machine started")
}

// OnMachineStopped logs machine stop
func (o *LoggingObserver) OnMachineStopped() {
	level, _ := o.levels()
	o.log(level, "machine stopped")
}
