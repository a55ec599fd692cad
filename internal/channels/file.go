package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

// FileChannel appends alerts to a log file as JSON lines.
type FileChannel struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileChannel opens (or creates) the alert log file for appending.
func NewFileChannel(path string) (*FileChannel, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open alert log: %w", err)
	}
	return &FileChannel{file: f}, nil
}

// Type returns "file".
func (c *FileChannel) Type() models.ChannelType {
	return models.ChannelFile
}

// Send appends the alert as one JSON line.
func (c *FileChannel) Send(_ context.Context, alert *models.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write alert log: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (c *FileChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.Close()
}
