package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Veraticus/rfidgate/internal/access"
)

const timeLayout = "15:04:05.000"

// Printer is an access.Sink that prints session events as styled lines. It is
// the console counterpart of the terminal UI.
type Printer struct {
	writer io.Writer
	now    func() time.Time
	mu     sync.Mutex
	lines  bool
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithRawLines also prints every record received from the device.
func WithRawLines(show bool) PrinterOption {
	return func(p *Printer) {
		p.lines = show
	}
}

// WithPrinterClock replaces the timestamp source.
func WithPrinterClock(now func() time.Time) PrinterOption {
	return func(p *Printer) {
		p.now = now
	}
}

// NewPrinter creates a printer writing to w, or stdout when w is nil.
func NewPrinter(w io.Writer, opts ...PrinterOption) *Printer {
	if w == nil {
		w = os.Stdout
	}
	p := &Printer{
		writer: w,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stamp := SubtleStyle.Render(p.now().Format(timeLayout))
	_, _ = fmt.Fprintf(p.writer, "%s %s\n", stamp, fmt.Sprintf(format, args...))
}

func (p *Printer) Line(text string) {
	if !p.lines {
		return
	}
	p.printf("%s %s", SubtleStyle.Render("<"), text)
}

func (p *Printer) IdentifierObserved(id string) {
	p.printf("%s new identifier %s", TagIcon, BoldStyle.Render(id))
}

func (p *Printer) IdentifierChanged(id string, ok bool) {
	if !ok {
		return
	}
	p.printf("identifier %s", BoldStyle.Render(id))
}

func (p *Printer) VerdictChanged(v access.Verdict) {
	if v == access.Unknown {
		return
	}
	p.printf("access %s", FormatVerdict(v))
}

func (p *Printer) CheckModeChanged(on bool) {
	if on {
		p.printf("check mode %s", SuccessStyle.Render("Active"))
		return
	}
	p.printf("check mode %s", ErrorStyle.Render("Disabled"))
}

func (p *Printer) ConnectionChanged(port string, connected bool) {
	if connected {
		p.printf("%s %s", PlugIcon, FormatSuccess("Connected to "+port))
		return
	}
	p.printf("%s %s", PlugIcon, FormatError("Disconnected from "+port))
}

var _ access.Sink = (*Printer)(nil)
