package client

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Line tags of the outbound protocol.
const (
	TagVersion  byte = 'V'
	TagLogin    byte = 'A'
	TagPosition byte = 'P'
	TagChunk    byte = 'C'
	TagBlock    byte = 'B'
	TagLight    byte = 'L'
	TagSign     byte = 'S'
	TagTalk     byte = 'T'
)

// MaxLineLength is the longest encoded line, newline included.  Longer
// free-text fields are cut to fit.
const MaxLineLength = 1023

// EncodeVersion announces the client protocol version.
func EncodeVersion(version int) string {
	return "V," + strconv.Itoa(version) + "\n"
}

// EncodeLogin carries the username and identity token.
func EncodeLogin(username, identityToken string) string {
	return frame("A,"+clean(username)+",", clean(identityToken))
}

// EncodePosition formats a pose with two decimals per component.
func EncodePosition(p Pose) string {
	var b strings.Builder
	b.Grow(48)
	b.WriteString("P")
	for _, v := range [...]float32{p.X, p.Y, p.Z, p.RX, p.RY} {
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(float64(v), 'f', 2, 64))
	}
	b.WriteByte('\n')
	return b.String()
}

// EncodeChunk requests chunk (p, q); key is the client's cache key for
// it.
func EncodeChunk(p, q, key int) string {
	return ints("C", p, q, key)
}

// EncodeBlock sets block (x, y, z) to type w; w == 0 removes it.
func EncodeBlock(x, y, z, w int) string {
	return ints("B", x, y, z, w)
}

// EncodeLight sets the light level at (x, y, z) to w.
func EncodeLight(x, y, z, w int) string {
	return ints("L", x, y, z, w)
}

// EncodeSign places text on the given face of block (x, y, z).
func EncodeSign(x, y, z, face int, text string) string {
	head := strings.TrimSuffix(ints("S", x, y, z, face), "\n") + ","
	return frame(head, clean(text))
}

// EncodeTalk carries a chat message.
func EncodeTalk(text string) string {
	return frame("T,", clean(text))
}

// SplitLines breaks an extracted batch into its lines, without the
// terminators.  Nothing is interpreted.
func SplitLines(batch []byte) []string {
	if len(batch) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(batch), "\n"), "\n")
}

// ParseLine splits one line into its tag and at most maxFields fields
// (all of them when maxFields <= 0), so a trailing free-text field can
// keep its commas.
func ParseLine(line string, maxFields int) (tag string, fields []string) {
	line = strings.TrimSuffix(line, "\n")
	if line == "" {
		return "", nil
	}
	tag, rest, found := strings.Cut(line, ",")
	if !found {
		return tag, nil
	}
	if maxFields <= 0 {
		maxFields = -1
	}
	return tag, strings.SplitN(rest, ",", maxFields)
}

func ints(tag string, vals ...int) string {
	b := make([]byte, 0, 48)
	b = append(b, tag...)
	for _, v := range vals {
		b = append(b, ',')
		b = strconv.AppendInt(b, int64(v), 10)
	}
	b = append(b, '\n')
	return string(b)
}

// frame joins head and a free-text tail into one line no longer than
// MaxLineLength, cutting the tail on a rune boundary if needed.
func frame(head, tail string) string {
	room := MaxLineLength - 1 - len(head)
	if room < 0 {
		head = head[:MaxLineLength-1]
		room = 0
	}
	if len(tail) > room {
		cut := room
		for cut > 0 && !utf8.RuneStart(tail[cut]) {
			cut--
		}
		tail = tail[:cut]
	}
	return head + tail + "\n"
}

// clean keeps a field on one line.
func clean(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, s)
}
