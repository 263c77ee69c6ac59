package audioseparator

import (
	"unicode/utf8"
)

// tailWriter keeps only the last limit bytes written to it.
type tailWriter struct {
	limit int
	buf   []byte
}

func newTailWriter(limit int) *tailWriter {
	return &tailWriter{
		limit: limit,
		buf:   make([]byte, 0, limit),
	}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) >= w.limit {
		w.buf = append(w.buf[:0], p[len(p)-w.limit:]...)
		return n, nil
	}
	if overflow := len(w.buf) + len(p) - w.limit; overflow > 0 {
		w.buf = append(w.buf[:0], w.buf[overflow:]...)
	}
	w.buf = append(w.buf, p...)
	return n, nil
}

// String returns the kept bytes, starting at the first complete UTF-8
// sequence.
func (w *tailWriter) String() string {
	b := w.buf
	for i := 0; i < len(b) && i < utf8.UTFMax; i++ {
		if utf8.RuneStart(b[i]) {
			return string(b[i:])
		}
	}
	return string(b[min(len(b), utf8.UTFMax):])
}
