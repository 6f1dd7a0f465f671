package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fiapx/fiapx-ascii-player/internal/domain/entity"
)

// ErrInterrupted is returned when the viewer quits playback from the keyboard.
var ErrInterrupted = errors.New("playback interrupted")

var footerStyle = lipgloss.NewStyle().Faint(true)

// FullscreenRenderer plays frames on the alternate screen, redrawing in
// place. Bubble Tea restores the tty on exit; the Session around it
// restores anything the program did not.
type FullscreenRenderer struct {
	in    io.Reader
	out   io.Writer
	title string
}

// NewFullscreenRenderer reads keys from in (stdin when nil) and draws to out.
func NewFullscreenRenderer(in io.Reader, out io.Writer, title string) *FullscreenRenderer {
	return &FullscreenRenderer{in: in, out: out, title: title}
}

func (r *FullscreenRenderer) Render(ctx context.Context, frames entity.FrameSequence, delay time.Duration) (err error) {
	if len(frames) == 0 {
		return nil
	}

	sess, err := Open(r.out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(r.out),
	}
	if r.in != nil {
		opts = append(opts, tea.WithInput(r.in))
	}

	final, err := tea.NewProgram(newPlaybackModel(frames, delay, r.title), opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run fullscreen player: %w", err)
	}
	if m, ok := final.(*playbackModel); ok && m.interrupted {
		return ErrInterrupted
	}
	return nil
}

type frameTickMsg struct{}

type playbackModel struct {
	frames      entity.FrameSequence
	delay       time.Duration
	title       string
	index       int
	width       int
	interrupted bool
}

func newPlaybackModel(frames entity.FrameSequence, delay time.Duration, title string) *playbackModel {
	return &playbackModel{frames: frames, delay: delay, title: title}
}

func (m *playbackModel) Init() tea.Cmd {
	return m.tick()
}

func (m *playbackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.interrupted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case frameTickMsg:
		m.index++
		if m.index >= len(m.frames) {
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *playbackModel) View() string {
	if m.index >= len(m.frames) {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.frames[m.index].String())
	sb.WriteByte('\n')
	sb.WriteString(footerStyle.Render(m.footer()))
	return sb.String()
}

func (m *playbackModel) footer() string {
	s := fmt.Sprintf("frame %d/%d", m.index+1, len(m.frames))
	if m.title != "" {
		s += "  " + m.title
	}
	if m.width > 0 && len(s) > m.width {
		s = s[:m.width]
	}
	return s
}

func (m *playbackModel) tick() tea.Cmd {
	if m.delay <= 0 {
		return func() tea.Msg { return frameTickMsg{} }
	}
	return tea.Tick(m.delay, func(time.Time) tea.Msg { return frameTickMsg{} })
}
