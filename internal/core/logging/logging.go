// Package logging provides the log capability instances report conditions
// through, backed by zap.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/harmony/internal/core/capability"
	"github.com/conduit-lang/harmony/internal/core/condition"
)

// MixinName is the name of the logging capability bag
const MixinName = "logging"

// Logger receives conditions raised while setting properties
type Logger interface {
	Log(c *condition.Condition)
}

// Config configures a zap-backed Logger
type Config struct {
	Name        string
	Environment string
	Version     string
	Level       string
	Development bool
}

// ZapLogger logs conditions as structured zap entries
type ZapLogger struct {
	logger *zap.Logger
}

// New builds a named zap logger from cfg
func New(cfg Config) (*ZapLogger, error) {
	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	if cfg.Level != "" {
		level, err := condition.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(zapLevel(level))
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}

	if cfg.Name != "" {
		logger = logger.Named(cfg.Name)
	}
	var fields []zap.Field
	if cfg.Environment != "" {
		fields = append(fields, zap.String("environment", cfg.Environment))
	}
	if cfg.Version != "" {
		fields = append(fields, zap.String("version", cfg.Version))
	}
	return &ZapLogger{logger: logger.With(fields...)}, nil
}

// Wrap adapts an existing zap logger
func Wrap(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger}
}

// Nop returns a logger that discards everything
func Nop() *ZapLogger {
	return Wrap(zap.NewNop())
}

// Zap returns the underlying zap logger
func (z *ZapLogger) Zap() *zap.Logger {
	return z.logger
}

// With returns a logger carrying additional fields
func (z *ZapLogger) With(fields ...zap.Field) *ZapLogger {
	return &ZapLogger{logger: z.logger.With(fields...)}
}

// AtLeast returns a logger that drops entries below level
func (z *ZapLogger) AtLeast(level condition.Level) *ZapLogger {
	return &ZapLogger{logger: z.logger.WithOptions(zap.IncreaseLevel(zapLevel(level)))}
}

// Log writes one entry for c at the zap level matching its severity.
// Fatal conditions are written at error level; the process never exits.
func (z *ZapLogger) Log(c *condition.Condition) {
	if c == nil {
		return
	}

	msg := c.Message
	if msg == "" {
		msg = string(c.Kind)
	}

	fields := []zap.Field{zap.String("kind", string(c.Kind))}
	if c.Type != "" {
		fields = append(fields, zap.String("type", c.Type))
	}
	if c.Property != "" {
		fields = append(fields, zap.String("property", c.Property))
	}
	if c.Capability != "" {
		fields = append(fields, zap.String("capability", c.Capability))
	}
	if c.Instance != "" {
		fields = append(fields, zap.String("instance", c.Instance))
	}
	if c.Err != nil {
		fields = append(fields, zap.Error(c.Err))
	}

	if ce := z.logger.Check(zapLevel(c.Level), msg); ce != nil {
		ce.Write(fields...)
	}
}

func zapLevel(l condition.Level) zapcore.Level {
	switch l {
	case condition.LevelDebug:
		return zapcore.DebugLevel
	case condition.LevelInfo:
		return zapcore.InfoLevel
	case condition.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Mixin returns the logging capability bag. Its log member takes one
// error argument; non-condition errors are logged at their own level.
func Mixin(l Logger) *capability.Bag {
	return capability.NewMixin(MixinName, capability.Member{
		Name: "log",
		Value: capability.Func(func(args ...any) (any, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("log takes one argument, got %d", len(args))
			}
			switch v := args[0].(type) {
			case *condition.Condition:
				l.Log(v)
			case error:
				l.Log(condition.From(v))
			default:
				return nil, fmt.Errorf("log: cannot log %T", args[0])
			}
			return nil, nil
		}),
	})
}

// Func adapts a function to Logger
type Func func(c *condition.Condition)

// Log calls f
func (f Func) Log(c *condition.Condition) {
	f(c)
}
