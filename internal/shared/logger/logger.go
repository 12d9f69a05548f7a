package logger

import (
	"os"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrObj — блок ошибки в записи лога
type ErrObj struct {
	Msg   string `json:"msg"`
	Stack string `json:"stack,omitempty"`
}

// Entry — одна структурированная запись лога.
// timestamp, level, service и hostname заполняет сам Logger.
type Entry struct {
	Action     string         // имя события, например ride_created
	Message    string         // человекочитаемое описание
	RequestID  string         // correlation id из chi middleware
	RideID     string         // если запись относится к поездке
	Error      *ErrObj        // только для WARN/ERROR
	Additional map[string]any // дополнительные поля
}

// Logger — тонкая обертка над zap, сохраняющая формат Entry.
type Logger struct {
	z    *zap.Logger
	base map[string]any
}

// Options — параметры создания логгера
type Options struct {
	Level  string // DEBUG | INFO | WARN | ERROR
	Pretty bool   // console encoder вместо JSON
}

// ParseLevel переводит строку из конфига в уровень zap. Неизвестное значение = INFO.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New создает логгер сервиса, пишущий в stdout.
func New(service string, opts Options) *Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		CallerKey:      "caller",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var enc zapcore.Encoder
	if opts.Pretty {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), ParseLevel(opts.Level))
	return NewWithCore(service, core)
}

// NewWithCore собирает логгер поверх произвольного core (используется в тестах с observer).
func NewWithCore(service string, core zapcore.Core) *Logger {
	host, _ := os.Hostname()
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).With(
		zap.String("service", service),
		zap.String("hostname", host),
	)
	return &Logger{z: z}
}

// Nop — логгер, который ничего не пишет.
func Nop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// Sync сбрасывает буферы zap. Ошибку sync для stdout игнорируем.
func (l *Logger) Sync() {
	_ = l.z.Sync()
}

// WithFields возвращает логгер, который добавляет base в Additional каждой записи.
func (l *Logger) WithFields(base map[string]any) *Logger {
	merged := make(map[string]any, len(l.base)+len(base))
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range base {
		merged[k] = v
	}
	return &Logger{z: l.z, base: merged}
}

func (l *Logger) Debug(e Entry) { l.log(zapcore.DebugLevel, e) }
func (l *Logger) Info(e Entry)  { l.log(zapcore.InfoLevel, e) }
func (l *Logger) Warn(e Entry)  { l.log(zapcore.WarnLevel, e) }
func (l *Logger) Error(e Entry) { l.log(zapcore.ErrorLevel, e) }

// Fatal пишет запись со стеком и завершает процесс.
func (l *Logger) Fatal(e Entry) {
	if e.Error == nil {
		e.Error = &ErrObj{Msg: e.Message}
	}
	if e.Error.Stack == "" {
		e.Error.Stack = string(debug.Stack())
	}
	l.log(zapcore.ErrorLevel, e)
	l.Sync()
	os.Exit(1)
}

func (l *Logger) log(level zapcore.Level, e Entry) {
	ce := l.z.Check(level, e.Message)
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, 5)
	fields = append(fields, zap.String("action", e.Action))
	if e.RequestID != "" {
		fields = append(fields, zap.String("request_id", e.RequestID))
	}
	if e.RideID != "" {
		fields = append(fields, zap.String("ride_id", e.RideID))
	}
	if e.Error != nil {
		fields = append(fields, zap.Object("error", e.Error))
	}
	if add := l.merge(e.Additional); len(add) > 0 {
		fields = append(fields, zap.Any("additional", add))
	}

	ce.Write(fields...)
}

func (l *Logger) merge(add map[string]any) map[string]any {
	if len(l.base) == 0 {
		return add
	}
	out := make(map[string]any, len(l.base)+len(add))
	for k, v := range l.base {
		out[k] = v
	}
	for k, v := range add {
		out[k] = v
	}
	return out
}

// MarshalLogObject позволяет писать ErrObj вложенным объектом.
func (o *ErrObj) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", o.Msg)
	if o.Stack != "" {
		enc.AddString("stack", o.Stack)
	}
	return nil
}
