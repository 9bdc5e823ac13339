package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jrsteele09/go-auth-client/internal/ansi"
	"github.com/jrsteele09/go-auth-client/users"
)

var _ Shell = (*Terminal)(nil)

var toastStyle = map[ToastKind]struct{ colour, glyph string }{
	ToastSuccess: {ansi.Green, "✔"},
	ToastError:   {ansi.Red, "✘"},
	ToastWarning: {ansi.Yellow, "!"},
	ToastInfo:    {ansi.Blue, "i"},
}

var noticeGlyph = map[NoticeIcon]string{
	IconEnvelope: "✉",
	IconClock:    "◷",
}

// Terminal renders the shell as lines of text on w
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	colour  bool
	loading bool
}

// NewTerminal writes to w, with ANSI colours when colour is true
func NewTerminal(w io.Writer, colour bool) *Terminal {
	return &Terminal{w: w, colour: colour}
}

func (t *Terminal) ShowScreen(s Screen) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printf("%s\n", t.wrap(ansi.Bold+ansi.Cyan, "== "+s.Title()+" =="))
}

func (t *Terminal) ShowLoading() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loading {
		return
	}
	t.loading = true
	t.printf("%s\n", t.wrap(ansi.Gray, "Loading..."))
}

func (t *Terminal) HideLoading() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false
}

func (t *Terminal) ShowToast(toast Toast) {
	t.mu.Lock()
	defer t.mu.Unlock()
	style, ok := toastStyle[toast.Kind]
	if !ok {
		style = toastStyle[ToastInfo]
	}
	t.printf("%s %s\n", t.wrap(style.colour, style.glyph+" "+toast.Title), toast.Message)
}

func (t *Terminal) ShowVerification(n Notice) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printf("%s\n", t.wrap(ansi.Bold+ansi.Cyan, "== "+ScreenVerification.Title()+" =="))
	t.printf("%s %s\n", noticeGlyph[n.Icon], t.wrap(ansi.Bold, n.Title))
	t.printf("%s\n", n.Message)
}

func (t *Terminal) SetLoggedIn(loggedIn bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	nav := "[Login] [Register]"
	if loggedIn {
		nav = "[Dashboard] [Profile] [Logout]"
	}
	t.printf("%s\n", t.wrap(ansi.Gray, nav))
}

func (t *Terminal) ShowUser(p *users.Profile) {
	if p == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	statusColour := ansi.Yellow
	if p.IsApproved {
		statusColour = ansi.Green
	}
	lines := []string{
		t.wrap(ansi.Bold, p.Greeting()),
		"  Email:   " + p.Email,
		"  Name:    " + users.DisplayName(p),
		"  Type:    " + p.UserType.Label(),
		"  Status:  " + t.wrap(statusColour, p.StatusLabel()),
	}
	if joined := p.JoinDate(); joined != "" {
		lines = append(lines, "  Joined:  "+joined)
	}
	if p.Birthday != "" {
		lines = append(lines, "  Birthday: "+p.Birthday)
	}
	if p.Gender != "" {
		lines = append(lines, "  Gender:  "+p.Gender)
	}
	t.printf("%s\n", strings.Join(lines, "\n"))
}

func (t *Terminal) wrap(colour, s string) string {
	return ansi.Wrap(t.colour, colour, s)
}

func (t *Terminal) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.w, format, args...)
}
