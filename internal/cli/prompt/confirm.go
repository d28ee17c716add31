// Package prompt asks the operator to approve proposed renames.
//
// Every confirmer has the same shape, a Func, so the scan phase does not
// care whether answers come from a terminal, a pipe, or a test.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/marmos91/smbcopy/internal/logger"
	"github.com/marmos91/smbcopy/pkg/plan"
)

// ErrAborted is returned when the operator aborts a prompt (Ctrl+C, Ctrl+D,
// or end of input).
var ErrAborted = errors.New("aborted")

// IsAborted returns true if the error indicates the user aborted.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF)
}

// Func decides whether a proposed rename is approved.
type Func func(c plan.Change) (bool, error)

// suffix is appended to every question; the default answer is yes.
const suffix = "[Y/n]"

// ParseAnswer applies the answer rule: surrounding whitespace is ignored,
// case does not matter, and "", "y" and "yes" mean yes. Anything else is no.
func ParseAnswer(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}

// Terminal prompts on an interactive terminal using promptui.
func Terminal(stdin io.ReadCloser, stdout io.WriteCloser) Func {
	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }} ",
		Valid:   "{{ . }} ",
		Invalid: "{{ . }} ",
		Success: "{{ . }} ",
	}
	return func(c plan.Change) (bool, error) {
		p := promptui.Prompt{
			Label:     c.String() + " " + suffix,
			Templates: templates,
			Stdin:     stdin,
			Stdout:    stdout,
		}
		result, err := p.Run()
		if err != nil {
			if IsAborted(err) {
				return false, ErrAborted
			}
			return false, err
		}
		return ParseAnswer(result), nil
	}
}

// Lines reads one answer per line from r, writing each question to w.
// End of input before an answer aborts.
func Lines(r io.Reader, w io.Writer) Func {
	br := bufio.NewReader(r)
	return func(c plan.Change) (bool, error) {
		if _, err := fmt.Fprintf(w, "%s %s ", c, suffix); err != nil {
			return false, err
		}
		line, err := br.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return false, err
			}
			if line == "" {
				_, _ = fmt.Fprintln(w)
				return false, ErrAborted
			}
		}
		return ParseAnswer(line), nil
	}
}

// AssumeYes approves every change, echoing the question and answer to w.
func AssumeYes(w io.Writer) Func {
	return func(c plan.Change) (bool, error) {
		_, err := fmt.Fprintf(w, "%s %s y\n", c, suffix)
		return true, err
	}
}

// Always returns a Func that gives the same answer to every change.
// Intended for tests and non-interactive callers.
func Always(answer bool) Func {
	return func(plan.Change) (bool, error) {
		return answer, nil
	}
}

// ForInput picks a confirmer for in: the promptui prompt when in is a
// terminal, line reading otherwise.
func ForInput(in io.Reader, out io.Writer) Func {
	if f, ok := in.(*os.File); ok && logger.IsTerminal(f.Fd()) {
		if of, ok := out.(*os.File); ok {
			return Terminal(f, of)
		}
		return Terminal(f, nopCloser{out})
	}
	return Lines(in, out)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
