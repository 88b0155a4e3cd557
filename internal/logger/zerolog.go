package logger

import (
	"io"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerolog writes JSON lines to writer.
func NewZerolog(writer io.Writer, level zerolog.Level) *ZerologAdapter {
	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &ZerologAdapter{logger: logger}
}

func NewConsoleLogger(level zerolog.Level) *ZerologAdapter {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout}
	return NewZerolog(consoleWriter, level)
}

// NewNop discards everything. Used when a caller does not supply a logger.
func NewNop() *ZerologAdapter {
	return &ZerologAdapter{logger: zerolog.Nop()}
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	withFields(z.logger.Info().Str("component", component), fields).Msg(message)
}

func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	withFields(z.logger.Error().Str("component", component).Err(err), fields).Msg("operation failed")
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	withFields(z.logger.Warn().Str("component", component), fields).Msg(message)
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	withFields(z.logger.Debug().Str("component", component), fields).Msg(message)
}

// withFields adds fields in key order using zerolog's typed encoders, so
// errors log as their message and durations in zerolog.DurationFieldUnit
// rather than as reflected structs.
func withFields(event *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	if event == nil || len(fields) == 0 {
		return event
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := fields[k].(type) {
		case error:
			event = event.AnErr(k, v)
		case time.Duration:
			event = event.Dur(k, v)
		case []string:
			event = event.Strs(k, v)
		case string:
			event = event.Str(k, v)
		default:
			event = event.Interface(k, v)
		}
	}
	return event
}
