package terminal

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

const (
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
	resetStyle  = "\x1b[0m"
	clearScreen = "\x1b[H\x1b[2J"
)

// Session scopes terminal state for one playback. Open saves the tty mode
// and hides the cursor; Close puts both back. Close is idempotent so it
// can be deferred and also called from an interrupt path.
type Session struct {
	out   io.Writer
	fd    int
	state *term.State
	once  sync.Once
}

func Open(out io.Writer) (*Session, error) {
	s := &Session{out: out, fd: -1}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.fd = int(f.Fd())
		state, err := term.GetState(s.fd)
		if err != nil {
			return nil, err
		}
		s.state = state
		if _, err := io.WriteString(out, hideCursor); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// IsTerminal reports whether the session is attached to a tty.
func (s *Session) IsTerminal() bool {
	return s.state != nil
}

func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		// Redirected output gets no control sequences.
		if s.state == nil {
			return
		}
		_, err = io.WriteString(s.out, resetStyle+showCursor)
		if rerr := term.Restore(s.fd, s.state); rerr != nil && err == nil {
			err = rerr
		}
	})
	return err
}
