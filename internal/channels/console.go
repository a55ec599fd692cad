package channels

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

// ConsoleChannel writes alerts to a terminal-style writer, one line
// per alert with a severity marker.
type ConsoleChannel struct {
	out io.Writer
}

// NewConsoleChannel creates a console channel writing to stdout.
func NewConsoleChannel() *ConsoleChannel {
	return &ConsoleChannel{out: os.Stdout}
}

// NewConsoleChannelWriter creates a console channel with a custom
// writer, used by tests.
func NewConsoleChannelWriter(w io.Writer) *ConsoleChannel {
	return &ConsoleChannel{out: w}
}

// Type returns "console".
func (c *ConsoleChannel) Type() models.ChannelType {
	return models.ChannelConsole
}

// Send writes the alert to the console.
func (c *ConsoleChannel) Send(_ context.Context, alert *models.Alert) error {
	line := fmt.Sprintf("[%s] %s %s: %s",
		strings.ToUpper(string(alert.Severity)),
		alert.Timestamp.Format("2006-01-02 15:04:05"),
		alert.Source,
		alert.Title,
	)
	if alert.DuplicateCount > 1 {
		line += fmt.Sprintf(" (x%d)", alert.DuplicateCount)
	}
	_, err := fmt.Fprintln(c.out, line)
	return err
}

// Close is a no-op for the console channel.
func (c *ConsoleChannel) Close() error {
	return nil
}
