// Package renderer streams source lines to the output, applying the
// configured line numbering.
//
// Sources are drained strictly in order, one at a time. A source that cannot
// be opened is reported on the error stream as "<token>: <cause>" and
// skipped; a failure while reading or writing aborts the whole run.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/conneroisu/catr/internal/config"
	catrerrors "github.com/conneroisu/catr/internal/errors"
	"github.com/conneroisu/catr/internal/logging"
	"github.com/conneroisu/catr/internal/source"
)

// numberWidth is the minimum width of the right-aligned line number.
const numberWidth = 6

// Opener resolves a source token into a line stream.
type Opener interface {
	Open(token string) (source.Stream, error)
}

// Renderer writes the lines of each configured source to out.
type Renderer struct {
	opener Opener
	out    io.Writer
	errOut io.Writer
	logger logging.Logger
}

// New creates a renderer. A nil logger discards debug output.
func New(opener Opener, out, errOut io.Writer, logger logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.Discard()
	}

	return &Renderer{
		opener: opener,
		out:    out,
		errOut: errOut,
		logger: logger.WithComponent("renderer"),
	}
}

// Run renders every source of cfg in order. Open failures are reported and
// do not fail the run; read and write failures are returned immediately, as
// is the context error if ctx is cancelled between lines.
func (r *Renderer) Run(ctx context.Context, cfg *config.Config) error {
	mode := cfg.Numbering()
	var drained, skipped int

	for _, token := range cfg.Files {
		if err := ctx.Err(); err != nil {
			return err
		}

		log := r.logger.With("source", token)
		stream, err := r.opener.Open(token)
		if err != nil {
			if !catrerrors.IsRecoverable(err) {
				return err
			}
			log.Debug(ctx, "skipping source", "error", err.Error())
			fmt.Fprintln(r.errOut, err)
			skipped++
			continue
		}

		log.Debug(ctx, "source opened", "numbering", mode.String())
		lines, err := r.render(ctx, stream, mode)
		closeErr := stream.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			log.Warn(ctx, closeErr, "close source")
		}
		log.Debug(ctx, "source drained", "lines", lines)
		drained++
	}

	r.logger.Info(ctx, "run complete", "drained", drained, "skipped", skipped)

	return nil
}

// render drains one stream with counters local to it and returns the number
// of lines written.
func (r *Renderer) render(ctx context.Context, stream source.Stream, mode config.NumberingMode) (int, error) {
	numberer := &lineNumberer{mode: mode}
	written := 0

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		line, err := stream.ReadLine()
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			var ce *catrerrors.CatrError
			if !errors.As(err, &ce) {
				err = catrerrors.NewReadError(stream.Name(), err)
			}
			return written, err
		}

		if _, err := io.WriteString(r.out, numberer.format(line)); err != nil {
			return written, catrerrors.NewWriteError(err)
		}
		written++
	}
}

// lineNumberer holds the running counters of a single source.
type lineNumberer struct {
	mode     config.NumberingMode
	all      int
	nonblank int
}

// format returns line with its prefix and exactly one trailing newline.
func (n *lineNumberer) format(line string) string {
	switch n.mode {
	case config.NumberAll:
		n.all++
		return prefixed(n.all, line)
	case config.NumberNonblank:
		if line == "" {
			return "\n"
		}
		n.nonblank++
		return prefixed(n.nonblank, line)
	default:
		return line + "\n"
	}
}

func prefixed(num int, line string) string {
	return fmt.Sprintf("%*d\t%s\n", numberWidth, num, line)
}
