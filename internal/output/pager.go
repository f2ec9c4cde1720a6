package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Pager is a running pager process fed through its standard input.
type Pager struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// StartPager starts command (split on whitespace) with its output going to
// stdout and stderr. LESS defaults to FRX when the environment leaves it unset.
func StartPager(command string, stdout, stderr io.Writer) (*Pager, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, errors.New("pager command is empty")
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = os.Environ()
	if _, ok := os.LookupEnv("LESS"); !ok {
		cmd.Env = append(cmd.Env, "LESS=FRX")
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("pager stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start pager %q: %w", command, err)
	}
	return &Pager{cmd: cmd, stdin: stdin}, nil
}

func (p *Pager) Write(b []byte) (int, error) {
	return p.stdin.Write(b)
}

// Close ends the pager's input and waits for it to exit.
func (p *Pager) Close() error {
	closeErr := p.stdin.Close()
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("pager: %w", err)
	}
	return closeErr
}
