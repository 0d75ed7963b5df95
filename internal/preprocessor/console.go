package preprocessor

import (
	"path"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

var (
	// "at fn (file:line:col)", "at file:line:col" and "fn@file:line:col"
	frameWithColumn = regexp.MustCompile(`([^\s()@]+):(\d+):(\d+)\)?\s*$`)
	frameLineOnly   = regexp.MustCompile(`([^\s()@]+):(\d+)\)?\s*$`)

	networkPattern = regexp.MustCompile(`(?i)network|fetch|xhr|timeout|cors|failed to load|connection|offline`)
	statePattern   = regexp.MustCompile(`(?i)\b(updat|chang|sav|delet|creat|set|render|mount|navigat|state)\w*`)
	checkPattern   = regexp.MustCompile(`(?i)\b(test|check|assert|expect|verif|validat)\w*`)
)

var noiseFrames = []string{
	"node_modules",
	"webpack",
	"vite",
	"rrweb",
	"react-dom",
	"chunk-",
	"<anonymous>",
	"native",
}

// consoleProcessor turns captured console calls into significant events.
type consoleProcessor struct{}

func (consoleProcessor) process(e rrweb.Event, r *run) {
	c, err := rrweb.DecodeData[rrweb.Console](e)
	if err != nil || c.Plugin != rrweb.ConsolePlugin || c.Payload.Level == "" || c.Payload.Payload == nil {
		log.Debug().Int64("timestamp", e.Timestamp).Msg("Skipping non-conforming console event")
		return
	}

	r.countEvent(e.Type, 0)

	level := strings.ToLower(c.Payload.Level)
	message := formatConsoleMessage(*c.Payload.Payload)
	location := sourceLocation(c.Payload.Trace)

	var details string
	switch level {
	case "error", "assert":
		details = "Console Error: " + message
	case "warn", "warning":
		details = "Console Warning: " + message
	default:
		details = "Info: " + message
		location = ""
	}
	if location != "" {
		details += " (at " + location + ")"
	}

	r.addSignificant(e.Timestamp, detailedLabel(e.Type, 0, ""), details, consoleImpact(level, message))

	if level == "error" || level == "assert" {
		msg := message
		if location != "" {
			msg += " (at " + location + ")"
		}
		r.addError(e.Timestamp, ErrorConsole, msg)
	}
}

// unquoteArg decodes a stringified console argument. Arguments that are not
// valid JSON strings lose one pair of wrapping quotes.
func unquoteArg(arg string) string {
	var s string
	if err := json.Unmarshal([]byte(arg), &s); err == nil {
		return s
	}
	if len(arg) >= 2 {
		first, last := arg[0], arg[len(arg)-1]
		if (first == '"' || first == '\'') && first == last {
			return arg[1 : len(arg)-1]
		}
	}
	return arg
}

// formatConsoleMessage applies printf-style substitution when the first
// argument is a format string, then appends leftover arguments.
func formatConsoleMessage(raw []string) string {
	args := make([]string, len(raw))
	for i, a := range raw {
		args[i] = unquoteArg(a)
	}
	if len(args) == 0 {
		return ""
	}
	if len(args) == 1 {
		return args[0]
	}

	format, rest := args[0], args[1:]
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		ch := format[i]
		if ch != '%' || i+1 >= len(format) {
			b.WriteByte(ch)
			continue
		}

		verb := format[i+1]
		switch verb {
		case '%':
			b.WriteByte('%')
			i++
		case 's', 'd', 'i', 'f', 'o', 'O', 'c':
			i++
			if len(rest) == 0 {
				b.WriteByte('%')
				b.WriteByte(verb)
				continue
			}
			// %c carries CSS and prints nothing
			if verb != 'c' {
				b.WriteString(rest[0])
			}
			rest = rest[1:]
		default:
			b.WriteByte(ch)
		}
	}

	out := b.String()
	if len(rest) > 0 {
		out += " " + strings.Join(rest, " ")
	}
	return out
}

// sourceLocation returns "file:line" of the first stack frame outside
// library and bundler code.
func sourceLocation(trace []string) string {
	for _, frame := range trace {
		if isNoiseFrame(frame) {
			continue
		}

		m := frameWithColumn.FindStringSubmatch(frame)
		if m == nil {
			m = frameLineOnly.FindStringSubmatch(frame)
		}
		if m == nil {
			continue
		}

		file := m[1]
		if i := strings.IndexAny(file, "?#"); i >= 0 {
			file = file[:i]
		}
		return path.Base(file) + ":" + m[2]
	}
	return ""
}

func isNoiseFrame(frame string) bool {
	for _, n := range noiseFrames {
		if strings.Contains(frame, n) {
			return true
		}
	}
	return false
}

func consoleImpact(level, message string) string {
	isError := level == "error" || level == "assert"
	isWarn := level == "warn" || level == "warning"

	switch {
	case networkPattern.MatchString(message):
		if isError {
			return "Network-related error may prevent data from loading"
		}
		if isWarn {
			return "Potential network or connectivity issue"
		}
		return "Network activity logged by the application"
	case statePattern.MatchString(message):
		if isError {
			return "Error during an application state change may leave the UI inconsistent"
		}
		if isWarn {
			return "Application state change raised a warning"
		}
		return "Application state change logged"
	case checkPattern.MatchString(message):
		if isError {
			return "Application check or validation failed"
		}
		if isWarn {
			return "Application check reported a potential problem"
		}
		return "Application check or test output"
	}

	switch {
	case isError:
		return "Technical error may impact user experience"
	case isWarn:
		return "Potential performance or user experience impact"
	}
	return "System state information"
}
