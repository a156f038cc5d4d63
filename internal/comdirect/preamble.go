package comdirect

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/ghamet/beancount-importers/internal/importererror"
)

// preambleState enumerates the scanner states. The scanner advances
// monotonically through them; any mismatch after the section marker has been
// found is terminal.
type preambleState int

const (
	stateSeekingSection preambleState = iota
	stateValidatingBalance
	stateValidatingBlank
	stateValidatingHeader
	stateDone
)

// balanceLinePattern matches the closing-balance preamble line of sections
// that carry one.
var balanceLinePattern = regexp.MustCompile(`^"Neuer Kontostand";"(?P<raw_amount>[0-9,.]+) EUR";$`)

// preambleResult reports how many lines the scanner consumed and, for
// sections with a running balance, the raw closing-balance string exactly as
// it appeared in the file.
type preambleResult struct {
	linesRead  int
	rawBalance string
}

// scanPreamble consumes lines from r until it has validated a full section
// preamble: the section marker, the closing-balance line when the layout
// declares one, a blank line, and the exact table header. Lines before the
// marker are skipped, which is what lets several sections share one file.
//
// Reaching end of input before the header validates is a format mismatch,
// not an I/O error.
func scanPreamble(r *bufio.Reader, structure AccountStructure, path string) (preambleResult, error) {
	markerPattern := sectionPattern(structure.Label)

	var res preambleResult
	state := stateSeekingSection

	for state != stateDone {
		line, err := readLine(r)
		if err != nil {
			if err == io.EOF {
				return res, &importererror.InvalidFormatError{
					FilePath: path,
					Expected: "comdirect " + string(structure.Type) + " section",
					Line:     res.linesRead,
					Msg:      "end of input before section preamble completed",
				}
			}
			return res, err
		}
		res.linesRead++

		switch state {
		case stateSeekingSection:
			if markerPattern.MatchString(line) {
				if structure.HasBalance {
					state = stateValidatingBalance
				} else {
					state = stateValidatingBlank
				}
			}
		case stateValidatingBalance:
			m := balanceLinePattern.FindStringSubmatch(line)
			if m == nil {
				return res, invalidPreamble(path, structure, res.linesRead, "expected closing balance line")
			}
			res.rawBalance = m[1]
			state = stateValidatingBlank
		case stateValidatingBlank:
			if line != "" {
				return res, invalidPreamble(path, structure, res.linesRead, "expected blank line after section marker")
			}
			state = stateValidatingHeader
		case stateValidatingHeader:
			if line != HeaderRow(structure.Fields) {
				return res, invalidPreamble(path, structure, res.linesRead, "table header does not match section layout")
			}
			state = stateDone
		}
	}

	return res, nil
}

func invalidPreamble(path string, structure AccountStructure, line int, msg string) error {
	return &importererror.InvalidFormatError{
		FilePath: path,
		Expected: "comdirect " + string(structure.Type) + " section",
		Line:     line,
		Msg:      msg,
	}
}

// readLine returns the next line with surrounding whitespace stripped. A
// final line without a newline terminator is still returned; io.EOF only
// surfaces once the input is exhausted.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
