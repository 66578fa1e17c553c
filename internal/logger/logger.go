// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// Every event is one JSON object carrying the service name.  By default the
// sink is stdout, which is what container runtimes collect.  When a log
// directory is configured the JSON goes to `<dir>/YYYY-MM-DD.log` instead,
// rotated, compressed, and pruned by Lumberjack, and Tee adds a
// human-readable console copy for interactive runs.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Name: "newsletter", Level: "info"})
//	if err != nil { … }
//	logger.Install(log)            // once, in main
//	intake := subscription.NewIntake(repo, log)
//
// Notes
// -----
// • Components receive the *zap.Logger through their constructors.  Install
//   exists only so bootstrap code and zap.S() calls inside config loading
//   share the same sink.
// • ISO-8601 timestamps and lowercase levels.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the sink and verbosity.
type Options struct {
	Name  string    // added to every entry as "name"
	Level string    // debug, info, warn, error; empty means info
	Dir   string    // rotating file sink when set, stdout otherwise
	Tee   bool      // console copy on stdout; ignored when JSON already goes there
	Sink  io.Writer // overrides Dir and stdout; used by tests
}

// stdout is the process's standard output.  Tests swap it.
var stdout zapcore.WriteSyncer = zapcore.Lock(os.Stdout)

var encCfg = zapcore.EncoderConfig{
	TimeKey:      "ts",
	LevelKey:     "level",
	NameKey:      "logger",
	MessageKey:   "msg",
	CallerKey:    "caller",
	EncodeTime:   zapcore.ISO8601TimeEncoder,
	EncodeLevel:  zapcore.LowercaseLevelEncoder,
	EncodeCaller: zapcore.ShortCallerEncoder,
}

// New returns a *zap.Logger built from opts.  It does not touch zap's
// globals; see Install.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("logger: level %q: %w", opts.Level, err)
		}
		level = l
	}

	sink, toStdout, err := jsonSink(opts)
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, level),
	}
	if opts.Tee && !toStdout {
		consoleCfg := encCfg
		consoleCfg.EncodeLevel = zapcore.LowercaseColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			stdout,
			level,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.ErrorOutput(sink),
		zap.AddCaller(),
	)
	if opts.Name != "" {
		z = z.With(zap.String("name", opts.Name))
	}
	return z, nil
}

// jsonSink picks the JSON destination and reports whether it is stdout.
func jsonSink(opts Options) (zapcore.WriteSyncer, bool, error) {
	switch {
	case opts.Sink != nil:
		return zapcore.AddSync(opts.Sink), false, nil
	case opts.Dir != "":
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("logger: %w", err)
		}
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, time.Now().Format("2006-01-02")+".log"),
			MaxSize:    50, // MB
			MaxBackups: 7,  // keep last seven files
			MaxAge:     14, // days
			Compress:   true,
		}), false, nil
	default:
		return stdout, true, nil
	}
}

var installOnce sync.Once

// Install makes z the process-wide default for zap.L() and zap.S().  Only
// the first call has any effect.
func Install(z *zap.Logger) {
	installOnce.Do(func() {
		zap.ReplaceGlobals(z)
		z.Info("logger online")
	})
}
