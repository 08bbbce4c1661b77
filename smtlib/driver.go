package smtlib

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/borzacchiello/smtpipe"
	"github.com/borzacchiello/smtpipe/logging"
)

// Interpreter pulls commands from a Parser and invokes them on an Engine.
type Interpreter struct {
	Parser *Parser
	Engine *smtpipe.Engine
	Out    io.Writer
	// EchoCommands prints every command before invoking it.
	EchoCommands bool

	logger *logging.Logger
	exited bool
}

func NewInterpreter(p *Parser, e *smtpipe.Engine, out io.Writer) *Interpreter {
	return &Interpreter{
		Parser: p,
		Engine: e,
		Out:    out,
		logger: logging.GlobalLogger.NewSubLogger("module", logging.PARSER_SERVICE).NewSubLogger("engine", e.ID()[:8]),
	}
}

// Drain invokes commands until none is available, the input requests an exit, or ctx is
// cancelled. Malformed commands are answered with an error response and skipped. It can be
// called again after more input reaches the parser.
func (in *Interpreter) Drain(ctx context.Context) (exited bool, err error) {
	if in.exited {
		return true, nil
	}
	invoked := 0
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		cmd, err := in.Parser.NextCommand()
		if err != nil {
			var perr *ParseError
			if !errors.As(err, &perr) {
				return false, errors.Wrap(err, "could not read the next command")
			}
			printFailure(in.Out, err)
			continue
		}
		if cmd == nil {
			in.logger.Trace("drained ", invoked, " commands")
			return false, nil
		}

		if in.EchoCommands {
			fmt.Fprintln(in.Out, cmd)
		}
		if err := cmd.Invoke(in.Engine, in.Out); err != nil {
			in.logger.Debug(cmd.Name(), " failed", err)
		}
		invoked++

		if _, ok := cmd.(*ExitCommand); ok {
			in.exited = true
			return true, nil
		}
	}
}

// Run drains an input that blocks until text is available, such as a file or stdin,
// until it ends.
func (in *Interpreter) Run(ctx context.Context) error {
	for {
		exited, err := in.Drain(ctx)
		if err != nil || exited || in.Parser.Done() {
			return err
		}
	}
}

// Exited reports whether an exit command was invoked.
func (in *Interpreter) Exited() bool {
	return in.exited
}
