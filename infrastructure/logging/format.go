package logging

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// maxFormatArgs is the number of values substituted into a message; extra values are ignored.
const maxFormatArgs = 4

// Debug logs msg at debug level, substituting up to four values.
func (l *Logger) Debug(msg string, args ...any) { l.levelLog(LevelDebug, msg, args) }

// Info logs msg at info level, substituting up to four values.
func (l *Logger) Info(msg string, args ...any) { l.levelLog(LevelInfo, msg, args) }

// Warn logs msg at warn level, substituting up to four values.
func (l *Logger) Warn(msg string, args ...any) { l.levelLog(LevelWarn, msg, args) }

// HTTP logs msg at http level.
func (l *Logger) HTTP(msg string, args ...any) { l.levelLog(LevelHTTP, msg, args) }

// Verbose logs msg at verbose level.
func (l *Logger) Verbose(msg string, args ...any) { l.levelLog(LevelVerbose, msg, args) }

// Silly logs msg at silly level.
func (l *Logger) Silly(msg string, args ...any) { l.levelLog(LevelSilly, msg, args) }

// levelLog never panics: if formatting or a sink fails, the raw message is
// written to the fallback writer instead.
func (l *Logger) levelLog(level Level, msg string, args []any) {
	if msg == "" {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			l.fallbackf("%s", msg)
		}
	}()

	l.Log(level, substitute(msg, args))
}

// substitute applies placeholders only when values were given, so a bare "%s" is kept as is.
// A nil value ends the list.
func substitute(msg string, args []any) string {
	if len(args) > maxFormatArgs {
		args = args[:maxFormatArgs]
	}
	for i, a := range args {
		if a == nil {
			args = args[:i]
			break
		}
	}
	if len(args) == 0 {
		return msg
	}
	return formatValues(msg, args)
}

// formatValues fills placeholders in format from args in order. "%j" renders
// a value as text or JSON, "%%" is a literal percent sign, placeholders left
// without a value are kept verbatim, and leftover values are appended
// separated by spaces. A value that does not fit its verb is printed as with %v.
func formatValues(format string, args []any) string {
	var b strings.Builder
	next := 0

	for i := 0; i < len(format); {
		if format[i] != '%' || i+1 == len(format) {
			b.WriteByte(format[i])
			i++
			continue
		}
		if format[i+1] == '%' {
			b.WriteByte('%')
			i += 2
			continue
		}

		end := verbIndex(format, i+1)
		if end < 0 {
			b.WriteByte('%')
			i++
			continue
		}

		directive := format[i : end+1]
		if next < len(args) {
			b.WriteString(renderValue(directive, format[end], args[next]))
			next++
		} else {
			b.WriteString(directive)
		}
		i = end + 1
	}

	for _, a := range args[next:] {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(a))
	}
	return b.String()
}

// verbs are the placeholder letters formatValues recognizes.
const verbs = "bcdeEfFgGjoOpqstTUvxX"

// verbIndex returns the index of the verb of the directive whose flags start
// at i, or -1 when there is none. A space is not a flag, so "100% done" is text.
func verbIndex(format string, i int) int {
	for i < len(format) && strings.IndexByte("+-#0", format[i]) >= 0 {
		i++
	}
	for i < len(format) && (format[i] >= '0' && format[i] <= '9' || format[i] == '.') {
		i++
	}
	if i < len(format) && strings.IndexByte(verbs, format[i]) >= 0 {
		return i
	}
	return -1
}

func renderValue(directive string, verb byte, v any) string {
	if verb == 'j' {
		return jsonText(v)
	}
	out := fmt.Sprintf(directive, v)
	if strings.HasPrefix(out, "%!") {
		return fmt.Sprint(v)
	}
	return out
}

// Error logs err at error level and returns the logged text.
//
// Without a param err is logged as is. With a param and a string err, the
// param is substituted like the level methods do; a "%j" placeholder is
// rendered from the param's message when it is an error or has a message
// field, as a string or number for plain values, and as JSON otherwise.
// Only the first param is used.
// Error returns "" when nothing was logged and never panics.
func (l *Logger) Error(err any, param ...any) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			if err != nil {
				l.fallbackf("%s", errorText(err))
			}
			msg = ""
		}
	}()

	if err == nil {
		return ""
	}
	if s, ok := err.(string); ok && s == "" {
		return ""
	}

	if len(param) == 0 || param[0] == nil {
		msg = errorText(err)
	} else {
		msg = formatError(err, param[0])
	}

	l.Log(LevelError, msg)
	return msg
}

func formatError(err any, param any) string {
	format, ok := err.(string)
	if !ok {
		return errorText(err)
	}
	return formatValues(format, []any{param})
}

// jsonText renders a "%j" value: the message of errors and of values with a
// message field, strings and numbers as they are, anything else as JSON.
func jsonText(v any) string {
	switch p := v.(type) {
	case error:
		return p.Error()
	case string:
		return p
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(p)
	}

	if m, ok := messageField(v); ok {
		return m
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}

// messageField extracts a "message" entry from maps or a Message field from structs.
func messageField(v any) (string, bool) {
	switch m := v.(type) {
	case map[string]any:
		s, ok := m["message"].(string)
		return s, ok
	case map[string]string:
		s, ok := m["message"]
		return s, ok
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return "", false
	}
	f := rv.FieldByName("Message")
	if !f.IsValid() || f.Kind() != reflect.String {
		return "", false
	}
	return f.String(), true
}

func errorText(err any) string {
	switch e := err.(type) {
	case string:
		return e
	case error:
		return e.Error()
	case fmt.Stringer:
		return e.String()
	default:
		return fmt.Sprint(err)
	}
}
