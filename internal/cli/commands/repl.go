package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/sqlshape/internal/cli/output"
	"github.com/leapstack-labs/sqlshape/pkg/shape"
	"github.com/spf13/cobra"
)

const (
	replPrompt     = "sqlshape> "
	replContPrompt = "     ...> "
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Fingerprint statements interactively",
		Long: `Start an interactive shell that prints the signature of each statement.

Statements may span several lines and end with a semicolon.
Type .help for commands, .quit to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd)
		},
	}
	return cmd
}

func runRepl(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)

	// History lives next to the state database
	historyFile := filepath.Join(filepath.Dir(cmdCtx.Cfg.StatePath), "repl_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cmdCtx.Renderer
	r.Println("sqlshape REPL")
	r.Println("Type .help for commands, .quit to exit")
	r.Println()

	session := newReplSession(r, cmdCtx.ShapeOptions())
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if session.eval(line) {
			break
		}
		rl.SetPrompt(session.prompt())
	}
	return nil
}

// replSession accumulates input lines into statements and fingerprints
// each complete one.
type replSession struct {
	r      *output.Renderer
	opts   shape.Options
	buffer strings.Builder
}

func newReplSession(r *output.Renderer, opts shape.Options) *replSession {
	return &replSession{r: r, opts: opts}
}

func (s *replSession) reset() {
	s.buffer.Reset()
}

func (s *replSession) prompt() string {
	if s.buffer.Len() > 0 {
		return replContPrompt
	}
	return replPrompt
}

// eval handles one input line and reports whether the session should end.
func (s *replSession) eval(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if s.buffer.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.dotCommand(line)
	}

	s.buffer.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buffer.WriteString(" ")
		return false
	}

	sql := strings.TrimRight(s.buffer.String(), "; ")
	s.buffer.Reset()
	s.fingerprint(sql)
	return false
}

func (s *replSession) fingerprint(sql string) {
	sig, err := s.opts.Fingerprint(sql)
	if err != nil {
		_, _ = fmt.Fprintf(s.r.ErrWriter(), "Error: %v\n", err)
		return
	}
	if s.r.IsStructured() {
		_ = s.r.Data(FingerprintRecord{Digest: sig.Digest(), Signature: &sig})
		return
	}
	s.r.Println(s.r.Styles().Digest.Render(sig.Digest()))
	signatureFields(s.r, sig)
	s.r.Println()
}

func (s *replSession) dotCommand(line string) bool {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		s.r.Println("Enter a SELECT statement ending with ';' to see its signature.")
		s.r.Println()
		s.r.Println("  .help   Show this help")
		s.r.Println("  .quit   Exit the REPL")
	default:
		_, _ = fmt.Fprintf(s.r.ErrWriter(), "Unknown command: %s (type .help for commands)\n", line)
	}
	return false
}
