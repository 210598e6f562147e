package voice

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// Console is a terminal-backed Recognizer and Synthesizer, used when no
// speech hardware is wired up. Listening reads a line; speaking prints it.
type Console struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewConsole creates a Console over the given reader and writer.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Listen reads one line of input.
func (c *Console) Listen(ctx context.Context) (string, error) {
	fmt.Fprint(c.out, "You: ")
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return c.scanner.Text(), nil
}

// Speak writes the reply.
func (c *Console) Speak(ctx context.Context, text string) error {
	_, err := fmt.Fprintf(c.out, "Assistant: %s\n", text)
	return err
}
