package mylog

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Logger is anything able to print a formatted line. *log.Logger qualifies.
type Logger interface {
	Printf(string, ...interface{})
}

type Level int

const (
	LevelFatal Level = iota - 2
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelStrings = map[string]Level{
	"FATAL": LevelFatal,
	"ERROR": LevelError,
	"WARN":  LevelWarn,
	"INFO":  LevelInfo,
	"DEBUG": LevelDebug,
}

var prefixes = map[Level]string{
	LevelFatal: "[FATAL] ",
	LevelError: "[ERROR] ",
	LevelWarn:  "[WARN ] ",
	LevelInfo:  "[INFO ] ",
	LevelDebug: "[DEBUG] ",
}

// MyLog writes leveled diagnostics to the console writer and, when given,
// to a log file. Diagnostics never go to the listings output stream: the
// console writer is stderr unless the caller says otherwise.
type MyLog struct {
	logLevel      Level
	consoleLogger Logger
	fileLogger    Logger
	exit          func(int)
}

// NewLog returns a logger filtering below the given level name. A nil
// console logger defaults to stderr. The stdlib default logger is silenced
// so that dependencies can't pollute stdout.
func NewLog(lvl string, consoleLogger, fileLogger Logger) (*MyLog, error) {
	level, ok := levelStrings[strings.ToUpper(lvl)]
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", lvl)
	}
	if consoleLogger == nil {
		consoleLogger = log.New(os.Stderr, "", log.LstdFlags)
	}
	log.SetOutput(io.Discard)
	return &MyLog{
		logLevel:      level,
		consoleLogger: consoleLogger,
		fileLogger:    fileLogger,
		exit:          os.Exit,
	}, nil
}

func (l *MyLog) Fatal() logcontext { return logcontext{l, LevelFatal} }
func (l *MyLog) Error() logcontext { return logcontext{l, LevelError} }
func (l *MyLog) Warn() logcontext  { return logcontext{l, LevelWarn} }
func (l *MyLog) Info() logcontext  { return logcontext{l, LevelInfo} }
func (l *MyLog) Debug() logcontext { return logcontext{l, LevelDebug} }

// IsDebug reports whether debug messages are kept.
func (l *MyLog) IsDebug() bool {
	return l != nil && l.logLevel >= LevelDebug
}

type logcontext struct {
	mylog *MyLog
	lvl   Level
}

// Printf writes the message on the configured writers. Messages at or below
// the configured level reach the console; everything reaches the log file
// when one is set. FATAL exits the process after writing.
func (c logcontext) Printf(format string, args ...interface{}) {
	if c.mylog == nil {
		// logger not initialized, best effort on stderr
		fmt.Fprintf(os.Stderr, prefixes[c.lvl]+format+"\n", args...)
		if c.lvl == LevelFatal {
			os.Exit(1)
		}
		return
	}
	if c.lvl <= c.mylog.logLevel && c.mylog.consoleLogger != nil {
		c.mylog.consoleLogger.Printf(prefixes[c.lvl]+format, args...)
	}
	if c.mylog.fileLogger != nil {
		c.mylog.fileLogger.Printf(prefixes[c.lvl]+format, args...)
	}
	if c.lvl == LevelFatal {
		c.mylog.exit(1)
	}
}
