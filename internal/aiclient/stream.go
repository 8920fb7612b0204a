package aiclient

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"unicode/utf8"
)

// ChatStream yields the reply as text fragments in arrival order. Fragments
// never split a UTF-8 sequence. A stream cannot be restarted.
type ChatStream struct {
	ctx    context.Context
	body   io.ReadCloser
	buf    []byte
	tail   []byte
	text   string
	err    error
	eof    bool
	done   bool
	report func(outcome string)

	closeOnce sync.Once
	received  bool
}

func newChatStream(ctx context.Context, body io.ReadCloser, report func(string)) *ChatStream {
	return &ChatStream{
		ctx:    ctx,
		body:   body,
		buf:    make([]byte, 4096),
		report: report,
	}
}

// Next advances to the next fragment. It returns false at the end of the
// reply, on error and once the context is cancelled.
func (s *ChatStream) Next() bool {
	if s.done {
		return false
	}
	for {
		if err := s.ctx.Err(); err != nil {
			s.finish(err)
			return false
		}
		if s.eof {
			// Flush an incomplete trailing sequence as replacement text.
			if len(s.tail) > 0 {
				s.text = strings.ToValidUTF8(string(s.tail), string(utf8.RuneError))
				s.tail = nil
				s.received = true
				return true
			}
			s.finish(nil)
			return false
		}

		n, err := s.body.Read(s.buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.eof = true
			} else {
				if ctxErr := s.ctx.Err(); ctxErr != nil {
					err = ctxErr
				}
				s.finish(err)
				return false
			}
		}
		if n == 0 {
			continue
		}

		data := append(s.tail, s.buf[:n]...)
		cut := completePrefix(data)
		s.tail = append([]byte(nil), data[cut:]...)
		if cut == 0 {
			continue
		}
		s.text = string(data[:cut])
		s.received = true
		return true
	}
}

// Text is the fragment produced by the last successful Next.
func (s *ChatStream) Text() string {
	return s.text
}

// Err is the error that ended the stream, nil after a clean end.
func (s *ChatStream) Err() error {
	return s.err
}

func (s *ChatStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if !s.done {
			s.finish(context.Canceled)
		}
		err = s.body.Close()
	})
	return err
}

func (s *ChatStream) finish(err error) {
	s.done = true
	s.err = err
	s.text = ""
	if s.report == nil {
		return
	}
	switch {
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		s.report("cancelled")
	case err != nil:
		s.report("error")
	case !s.received:
		s.report("empty")
	default:
		s.report("ok")
	}
	s.report = nil
}

// completePrefix returns the length of the longest prefix of b that does not
// end inside a multi-byte sequence.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}
