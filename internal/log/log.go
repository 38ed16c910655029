// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// IDMAP_LOG env variable.
func InitLogger() {
	log.SetHandler(&CustomHandler{})

	level, err := log.ParseLevel(strings.ToLower(os.Getenv("IDMAP_LOG")))
	if err != nil {
		level = log.ErrorLevel
	}
	log.SetLevel(level)
}

// CustomHandler formats log messages and writes them to stderr, keeping
// stdout for command output.
type CustomHandler struct {
	Writer io.Writer
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	w := h.Writer
	if w == nil {
		w = os.Stderr
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())
	message := e.Message
	if len(e.Fields) > 0 {
		for _, name := range e.Fields.Names() {
			message += fmt.Sprintf(" %s=%v", name, e.Fields.Get(name))
		}
	}
	fmt.Fprintf(w, "%s %.1s %s\n", timestamp, level, message)
	return nil
}
