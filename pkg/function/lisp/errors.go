package lisp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// EvalError is a parse or runtime error reported by the interpreter.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e *EvalError) Error() string {
	switch {
	case e.Line > 0 && e.Col > 0:
		return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Col, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// colPattern picks up a column if the message carries one.
var colPattern = regexp.MustCompile(`(?i)\bcol(?:umn)? (\d+)`)

// parseZygomysError converts a zygomys error into an *EvalError, extracting
// line and column numbers when the message has them.
func parseZygomysError(err error) *EvalError {
	msg := strings.TrimSpace(err.Error())

	e := &EvalError{Message: msg}
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			e.Line, _ = strconv.Atoi(m[1])
			e.Message = strings.TrimSpace(m[2])
			break
		}
	}
	if m := colPattern.FindStringSubmatch(msg); m != nil {
		e.Col, _ = strconv.Atoi(m[1])
	}
	if e.Message == "" {
		e.Message = msg
	}
	return e
}
