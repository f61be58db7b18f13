// Package source resolves source tokens into line streams.
//
// A token is either a path, opened on the Resolver's filesystem, or the
// sentinel "-" which reads from the Resolver's stdin. Both variants satisfy
// the Stream interface and yield lines with their terminators stripped.
package source

import (
	"bufio"
	"io"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	catrerrors "github.com/conneroisu/catr/internal/errors"
)

// Stdin is the token that selects standard input.
const Stdin = "-"

// Stream is a forward-only sequence of lines read from one source.
type Stream interface {
	// Name returns the token the stream was opened from.
	Name() string
	// ReadLine returns the next line without its terminator, or io.EOF once
	// the source is exhausted. Any other error is a read error.
	ReadLine() (string, error)
	// Close releases the underlying handle.
	Close() error
}

// Resolver opens source tokens.
type Resolver struct {
	fs    afero.Fs
	stdin io.Reader
}

// NewResolver creates a resolver reading files from fs and "-" from stdin.
func NewResolver(fs afero.Fs, stdin io.Reader) *Resolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Resolver{fs: fs, stdin: stdin}
}

// Open turns a token into a Stream. Failures are returned as recoverable
// open errors carrying the token.
func (r *Resolver) Open(token string) (Stream, error) {
	if token == Stdin {
		if r.stdin == nil {
			return nil, catrerrors.NewOpenError(token, syscall.EBADF)
		}
		return &stdinStream{lineReader: newLineReader(token, r.stdin)}, nil
	}

	f, err := r.fs.Open(token)
	if err != nil {
		return nil, catrerrors.NewOpenError(token, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, catrerrors.NewOpenError(token, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, catrerrors.NewOpenError(token, syscall.EISDIR)
	}

	return &fileStream{lineReader: newLineReader(token, f), file: f}, nil
}

type lineReader struct {
	name string
	r    *bufio.Reader
	err  error
}

func newLineReader(name string, r io.Reader) *lineReader {
	validated := transform.NewReader(r, encoding.UTF8Validator)
	return &lineReader{name: name, r: bufio.NewReader(validated)}
}

func (lr *lineReader) Name() string {
	return lr.name
}

func (lr *lineReader) ReadLine() (string, error) {
	if lr.err != nil {
		return "", lr.err
	}

	line, err := lr.r.ReadString('\n')
	switch {
	case err == io.EOF && line == "":
		lr.err = io.EOF
		return "", io.EOF
	case err != nil && err != io.EOF:
		lr.err = catrerrors.NewReadError(lr.name, err)
		return "", lr.err
	}

	if trimmed, ok := strings.CutSuffix(line, "\n"); ok {
		line = strings.TrimSuffix(trimmed, "\r")
	}

	return line, nil
}

// stdinStream leaves the process stdin open on Close so that "-" may be
// listed more than once.
type stdinStream struct {
	*lineReader
}

func (s *stdinStream) Close() error {
	return nil
}

type fileStream struct {
	*lineReader
	file afero.File
}

func (s *fileStream) Close() error {
	return s.file.Close()
}
