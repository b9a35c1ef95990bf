package command

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

const maxLineSize = 1 << 20

// PersistFunc saves the records after a mutating command.
type PersistFunc func(ctx context.Context) error

// Session reads command lines from an input stream and writes one block of
// feedback per line.
type Session struct {
	decoder    *Decoder
	dispatcher *Dispatcher
	persist    PersistFunc
	logger     *zap.Logger
	maxLine    int
	mutated    bool
}

// NewSession constructs a Session. persist may be nil to skip saving.
func NewSession(decoder *Decoder, dispatcher *Dispatcher, persist PersistFunc, logger *zap.Logger) *Session {
	if decoder == nil {
		decoder = NewDecoder(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{decoder: decoder, dispatcher: dispatcher, persist: persist, logger: logger, maxLine: maxLineSize}
}

// Mutated reports whether any command of the session changed the records.
func (s *Session) Mutated() bool { return s.mutated }

// Run processes lines until EOF, an exit command or ctx cancellation. Blank
// lines and lines starting with '#' are skipped. A line longer than the limit
// is rejected as invalid and reading continues with the next one.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	for {
		raw, tooLong, err := readLine(reader, s.maxLine)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if tooLong {
			msg := appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("command line exceeds %d bytes", s.maxLine))
			s.logger.Warn("command line rejected", zap.Int("limit", s.maxLine))
			if err := writeLine(out, Message(msg)); err != nil {
				return err
			}
			continue
		}
		line := bytes.TrimSpace(raw)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		exit, err := s.handle(ctx, line, out)
		if err != nil {
			return err
		}
		if exit {
			return nil
		}
	}
}

// readLine returns the next newline-terminated line. Once a line grows past
// limit bytes the rest of it is discarded and tooLong is set. io.EOF is only
// returned when no bytes remain.
func readLine(r *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	read := false
	for {
		chunk, err := r.ReadSlice('\n')
		read = read || len(chunk) > 0
		if !tooLong {
			if len(bytes.TrimRight(line, "\r\n"))+len(bytes.TrimRight(chunk, "\r\n")) > limit {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && read:
			return line, tooLong, nil
		default:
			return line, tooLong, err
		}
	}
}

func (s *Session) handle(ctx context.Context, line []byte, out io.Writer) (bool, error) {
	cmd, err := s.decoder.Decode(line)
	if err != nil {
		return false, writeLine(out, Message(err))
	}
	res, err := s.dispatcher.Execute(ctx, cmd)
	if err != nil {
		return false, writeLine(out, Message(err))
	}
	if err := writeLine(out, res.Feedback); err != nil {
		return false, err
	}
	if res.Mutated {
		s.mutated = true
		if s.persist != nil {
			if perr := s.persist(ctx); perr != nil {
				s.logger.Error("save failed", zap.String("command_id", res.ID), zap.Error(perr))
				if err := writeLine(out, "Could not save records: "+perr.Error()); err != nil {
					return false, err
				}
			}
		}
	}
	return res.Exit, nil
}

func writeLine(out io.Writer, text string) error {
	_, err := fmt.Fprintln(out, text)
	return err
}
