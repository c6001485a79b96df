package log

import (
	"fmt"
	"strings"
)

// A Level is a logging priority. Higher levels are more important. The
// numeric values line up with zapcore so a Level can be handed straight to
// the underlying core.
type Level int8

// Logging levels.
const (
	DebugLevel Level = iota - 1
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel Level = 5
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		panic(fmt.Errorf("log: unknown level: %d", l))
	}
}

// MarshalYAML implements the YAML encoding interface.
func (l Level) MarshalYAML() (interface{}, error) {
	switch l {
	case DebugLevel:
		return "debug", nil
	case InfoLevel:
		return "info", nil
	case WarnLevel:
		return "warn", nil
	case ErrorLevel:
		return "error", nil
	case FatalLevel:
		return "fatal", nil
	default:
		panic(fmt.Errorf("log: unknown level: %d", l))
	}
}

// UnmarshalYAML implements the YAML decoding interface. An empty value is
// left at the default InfoLevel.
func (l *Level) UnmarshalYAML(unmarshal func(interface{}) error) error {
	raw := ""
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return l.set(raw)
}

// UnmarshalText lets a Level be parsed from flag values.
func (l *Level) UnmarshalText(text []byte) error {
	return l.set(string(text))
}

func (l *Level) set(raw string) error {
	switch strings.ToLower(raw) {
	case "":
		return nil
	case "debug":
		*l = DebugLevel
		return nil
	case "info":
		*l = InfoLevel
		return nil
	case "warn":
		*l = WarnLevel
		return nil
	case "error":
		*l = ErrorLevel
		return nil
	case "fatal":
		*l = FatalLevel
		return nil
	default:
		return fmt.Errorf("log: unable to decode Level value: %q", raw)
	}
}
