package alarm

import "strings"

// Matches reports whether typed input passes the dismissal gate.
//
// When the expected payload decoded cleanly, the typed text (whitespace
// trimmed) must equal the secret message exactly, case-sensitive. When the
// payload is absent or its message is empty (a corrupted record that failed
// to decode), any non-empty typed input matches. That fallback is deliberate:
// a payload the codec cannot read must never lock the user out of silencing
// the alarm.
//
// Pure predicate, cheap enough to call on every keystroke.
func Matches(expected *Payload, typed string) bool {
	t := strings.TrimSpace(typed)
	if expected == nil || expected.Message == "" {
		return t != ""
	}
	return t == expected.Message
}
