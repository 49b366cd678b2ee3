package logger

import (
	"fmt"
	"log"
	"sync/atomic"
)

var debugEnabled atomic.Bool

// EnableDebug turns Debug output on or off. Off by default so the
// steady-state flood loop stays quiet.
func EnableDebug(on bool) {
	debugEnabled.Store(on)
}

func Debug(format string, v ...any) {
	if !debugEnabled.Load() {
		return
	}
	log.Printf(fmt.Sprintf("[DEBUG] %s\n", format), v...)
}

func Info(format string, v ...any) {
	log.Printf(fmt.Sprintf("[INFO] %s\n", format), v...)
}

func Error(format string, v ...any) {
	log.Printf(fmt.Sprintf("[ERROR] %s\n", format), v...)
}

func Fatal(format string, v ...any) {
	log.Fatalf(fmt.Sprintf("[FATAL] %s\n", format), v...)
}
