package cli

import (
	"bufio"
	"context"
	"io"
	"sync"
)

type inputResult struct {
	text string
	err  error
}

// lineReader reads lines on a background goroutine so a prompt can be abandoned
// when the context is cancelled.
type lineReader struct {
	reader *bufio.Reader
	lines  chan inputResult
	done   chan struct{}
	start  sync.Once
	stop   sync.Once
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		reader: bufio.NewReader(r),
		lines:  make(chan inputResult),
		done:   make(chan struct{}),
	}
}

func (l *lineReader) pump() {
	defer close(l.lines)
	for {
		text, err := l.reader.ReadString('\n')
		if text != "" && !l.send(inputResult{text: text}) {
			return
		}
		if err != nil {
			if err != io.EOF {
				l.send(inputResult{err: err})
			}
			return
		}
	}
}

func (l *lineReader) send(res inputResult) bool {
	select {
	case l.lines <- res:
		return true
	case <-l.done:
		return false
	}
}

// ReadLine blocks until a line arrives, the input ends (io.EOF) or ctx is done.
func (l *lineReader) ReadLine(ctx context.Context) (string, error) {
	l.start.Do(func() { go l.pump() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}

// Close releases the pump once it finishes its current read.
func (l *lineReader) Close() {
	l.stop.Do(func() { close(l.done) })
}
