package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// GlobalLogger is disabled until the CLI configures it. Each package derives its own sub-logger from it.
var GlobalLogger = NewLogger(zerolog.Disabled, false)

// Logger sends every event to a set of structured/unstructured writers and, optionally, to a console.
type Logger struct {
	// level is the minimum level that is emitted
	level zerolog.Level

	// multiLogger writes to every writer registered through AddWriter
	multiLogger zerolog.Logger

	// consoleLogger writes human readable output to the console writer
	consoleLogger zerolog.Logger

	// context holds the key-value pairs added through NewSubLogger, so they survive AddWriter
	context map[string]string

	// writers are the channels the multiLogger writes to
	writers []io.Writer

	// added are the writers given to AddWriter before any wrapping
	added []io.Writer
}

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED logs one JSON object per event
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED logs human readable lines without colors
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo is a set of fields attached to a single event
type StructuredLogInfo map[string]any

// ConsoleOutput is where the console logger writes. Diagnostics go to stderr so they never mix
// with solver responses on stdout.
var ConsoleOutput io.Writer = os.Stderr

// NewLogger creates a Logger with the given level. The console is used when consoleEnabled is set.
func NewLogger(level zerolog.Level, consoleEnabled bool, writers ...io.Writer) *Logger {
	l := &Logger{
		level:         level,
		multiLogger:   zerolog.New(io.Discard).Level(zerolog.Disabled),
		consoleLogger: zerolog.New(io.Discard).Level(zerolog.Disabled),
		context:       map[string]string{},
		writers:       writers,
	}
	if len(writers) > 0 {
		l.multiLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	}
	if consoleEnabled {
		consoleWriter := setupDefaultFormatting(zerolog.ConsoleWriter{Out: ConsoleOutput}, level)
		l.consoleLogger = zerolog.New(consoleWriter).Level(level)
	}
	return l
}

// NewSubLogger returns a Logger that tags every event with key=value.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	context := make(map[string]string, len(l.context)+1)
	for k, v := range l.context {
		context[k] = v
	}
	context[key] = value
	return &Logger{
		level:         l.level,
		multiLogger:   l.multiLogger.With().Str(key, value).Logger(),
		consoleLogger: l.consoleLogger.With().Str(key, value).Logger(),
		context:       context,
		writers:       l.writers,
		added:         l.added,
	}
}

// AddWriter adds a writer to the channels of this logger. Adding the same writer twice is a no-op.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat) {
	for _, w := range l.added {
		if writer == w {
			return
		}
	}
	l.added = append(l.added, writer)
	if format == UNSTRUCTURED {
		writer = zerolog.ConsoleWriter{Out: writer, NoColor: true}
	}
	l.writers = append(l.writers, writer)

	ctx := zerolog.New(zerolog.MultiLevelWriter(l.writers...)).Level(l.level).With().Timestamp()
	for k, v := range l.context {
		ctx = ctx.Str(k, v)
	}
	l.multiLogger = ctx.Logger()
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.multiLogger = l.multiLogger.Level(level)
	l.consoleLogger = l.consoleLogger.Level(level)
}

func (l *Logger) Trace(args ...any) {
	l.log(l.consoleLogger.Trace(), l.multiLogger.Trace(), args)
}

func (l *Logger) Debug(args ...any) {
	l.log(l.consoleLogger.Debug(), l.multiLogger.Debug(), args)
}

func (l *Logger) Info(args ...any) {
	l.log(l.consoleLogger.Info(), l.multiLogger.Info(), args)
}

func (l *Logger) Warn(args ...any) {
	l.log(l.consoleLogger.Warn(), l.multiLogger.Warn(), args)
}

func (l *Logger) Error(args ...any) {
	l.log(l.consoleLogger.Error(), l.multiLogger.Error(), args)
}

// Panic logs the event and then panics with the message.
func (l *Logger) Panic(args ...any) {
	msg, err, _ := buildMsg(args...)
	l.log(l.consoleLogger.WithLevel(zerolog.PanicLevel), l.multiLogger.WithLevel(zerolog.PanicLevel), args)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", msg, err))
	}
	panic(msg)
}

func (l *Logger) log(consoleLog *zerolog.Event, multiLog *zerolog.Event, args []any) {
	msg, err, info := buildMsg(args...)

	// Err and Fields are no-ops on disabled (nil) events
	consoleLog.Err(err)
	multiLog.Err(err)
	if err != nil && l.level <= zerolog.DebugLevel {
		consoleLog.Stack()
		multiLog.Stack()
	}
	if info != nil {
		consoleLog.Fields(map[string]any(info))
		multiLog.Fields(map[string]any(info))
	}

	multiLog.Msg(msg)
	consoleLog.Msg(msg)
}

// buildMsg concatenates the plain arguments and extracts at most one error and one StructuredLogInfo.
func buildMsg(args ...any) (string, error, StructuredLogInfo) {
	parts := make([]string, 0, len(args))
	var info StructuredLogInfo
	var err error

	for _, arg := range args {
		switch t := arg.(type) {
		case StructuredLogInfo:
			info = t
		case error:
			err = t
		default:
			parts = append(parts, fmt.Sprintf("%v", t))
		}
	}
	return strings.Join(parts, ""), err, info
}

// setupDefaultFormatting drops timestamps and module fields from console output.
func setupDefaultFormatting(writer zerolog.ConsoleWriter, level zerolog.Level) zerolog.ConsoleWriter {
	writer.FormatTimestamp = func(i any) string {
		return ""
	}
	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{"module", "engine"}
	}
	return writer
}

// LevelFromVerbosity maps the SMT-LIB :verbosity option (0..5) to a log level.
func LevelFromVerbosity(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	}
	return zerolog.TraceLevel
}
