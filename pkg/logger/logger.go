package logger

import (
	"fmt"
	"log/slog"
)

// Printf routes printf-style library logs (cron.VerbosePrintfLogger and
// friends) into a slog.Logger at debug level.
type Printf struct {
	base *slog.Logger
}

// New returns a printf adapter tagged with component. A nil base uses slog.Default.
func New(component string, base *slog.Logger) *Printf {
	if base == nil {
		base = slog.Default()
	}
	return &Printf{base: base.With("component", component)}
}

// Printf implements the printf logger contract.
func (p *Printf) Printf(format string, args ...any) {
	p.base.Debug(fmt.Sprintf(format, args...))
}
