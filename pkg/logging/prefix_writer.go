package logging

import (
	"bytes"
	"io"
	"sync"
)

// PrefixWriter wraps an io.Writer and adds a prefix to each complete line.
type PrefixWriter struct {
	mu     sync.Mutex
	prefix []byte
	writer io.Writer
	buffer bytes.Buffer
}

func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		writer: w,
	}
}

// Write buffers p until a newline is seen, then writes each prefixed line.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pw.buffer.Write(p)
	for {
		i := bytes.IndexByte(pw.buffer.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := pw.buffer.Next(i + 1)

		if _, err := pw.writer.Write(pw.prefix); err != nil {
			return 0, err
		}
		if _, err := pw.writer.Write(line); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
