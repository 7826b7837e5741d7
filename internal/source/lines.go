// Package source reads SQL statements from files, streams and databases.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/sqlshape/internal/group"
	"golang.org/x/text/unicode/norm"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Stdin is the path that ReadFiles maps to standard input.
const Stdin = "-"

// ReadLines reads one statement per line. Blank lines and lines starting
// with -- or # are skipped, a trailing ';' is dropped, and text is NFC
// normalized so composed and decomposed spellings of a name compare equal.
func ReadLines(r io.Reader) ([]group.Statement, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var stmts []group.Statement
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimRight(line, ";"))
		if line == "" {
			continue
		}
		stmts = append(stmts, group.Statement{Line: lineNo, SQL: norm.NFC.String(line)})
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("line %d exceeds %d bytes: %w", lineNo+1, maxLineSize, err)
		}
		return nil, fmt.Errorf("failed to read statements: %w", err)
	}
	return stmts, nil
}

// ReadFiles reads statements from each path in turn. "-" reads stdin, as
// does an empty path list. Line numbers restart at 1 for every file.
func ReadFiles(stdin io.Reader, paths ...string) ([]group.Statement, error) {
	if len(paths) == 0 {
		paths = []string{Stdin}
	}
	var all []group.Statement
	for _, path := range paths {
		stmts, err := readPath(stdin, path)
		if err != nil {
			return nil, err
		}
		all = append(all, stmts...)
	}
	return all, nil
}

func readPath(stdin io.Reader, path string) ([]group.Statement, error) {
	if path == Stdin {
		return ReadLines(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	stmts, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stmts, nil
}
