package logger

// Logging is designed to look and feel like clang's error format. The
// library core never logs; this package exists for the CLI and for the
// optional timing instrumentation, which both want colored diagnostics on a
// terminal and plain text everywhere else.

import (
	"fmt"
	"os"
	"sync"
)

type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool
	Done      func() []Msg
}

type LogLevel int8

const (
	LevelNone LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
	LevelSilent
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Info
	Debug
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "debug"
	}
}

type Msg struct {
	Kind MsgKind
	Text string
}

func (log Log) AddError(text string) {
	log.AddMsg(Msg{Kind: Error, Text: text})
}

func (log Log) AddWarning(text string) {
	log.AddMsg(Msg{Kind: Warning, Text: text})
}

func (log Log) AddInfo(text string) {
	log.AddMsg(Msg{Kind: Info, Text: text})
}

func (log Log) AddDebug(text string) {
	log.AddMsg(Msg{Kind: Debug, Text: text})
}

func hasNoColorEnvironmentVariable() bool {
	// https://no-color.org/
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

type TerminalInfo struct {
	IsTTY           bool
	UseColorEscapes bool
	Width           int
	Height          int
}

type Colors struct {
	Reset     string
	Bold      string
	Dim       string
	Red       string
	Green     string
	Magenta   string
	Underline string
}

var TerminalColors = Colors{
	Reset:     "\033[0m",
	Bold:      "\033[1m",
	Dim:       "\033[37m",
	Red:       "\033[31m",
	Green:     "\033[32m",
	Magenta:   "\033[35m",
	Underline: "\033[4m",
}

type UseColor uint8

const (
	ColorIfTerminal UseColor = iota
	ColorNever
	ColorAlways
)

type OutputOptions struct {
	Color    UseColor
	LogLevel LogLevel
}

func (msg Msg) String(terminalInfo TerminalInfo) string {
	if terminalInfo.UseColorEscapes {
		var color string
		switch msg.Kind {
		case Error:
			color = TerminalColors.Red
		case Warning:
			color = TerminalColors.Magenta
		case Debug:
			color = TerminalColors.Dim
		default:
			return fmt.Sprintf("%s\n", msg.Text)
		}
		return fmt.Sprintf("%s%s%s:%s %s\n",
			TerminalColors.Bold, color, msg.Kind, TerminalColors.Reset, msg.Text)
	}
	if msg.Kind == Info {
		return fmt.Sprintf("%s\n", msg.Text)
	}
	return fmt.Sprintf("%s: %s\n", msg.Kind, msg.Text)
}

func levelForKind(kind MsgKind) LogLevel {
	switch kind {
	case Error:
		return LevelError
	case Warning:
		return LevelWarning
	case Info:
		return LevelInfo
	default:
		return LevelDebug
	}
}

func NewStderrLog(options OutputOptions) Log {
	var mutex sync.Mutex
	var msgs []Msg
	terminalInfo := GetTerminalInfo(os.Stderr)
	errors := 0

	switch options.Color {
	case ColorNever:
		terminalInfo.UseColorEscapes = false
	case ColorAlways:
		terminalInfo.UseColorEscapes = SupportsColorEscapes
	}

	logLevel := options.LogLevel
	if logLevel == LevelNone {
		logLevel = LevelInfo
	}

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			msgs = append(msgs, msg)
			if msg.Kind == Error {
				errors++
			}
			if logLevel <= levelForKind(msg.Kind) {
				writeStringWithColor(os.Stderr, msg.String(terminalInfo))
			}
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return errors > 0
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			return msgs
		},
	}
}

// NewDeferLog buffers everything for later inspection. Tests use this.
func NewDeferLog() Log {
	var mutex sync.Mutex
	var msgs []Msg
	errors := 0

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			msgs = append(msgs, msg)
			if msg.Kind == Error {
				errors++
			}
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return errors > 0
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			return msgs
		},
	}
}
