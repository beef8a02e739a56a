package file

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/drakos74/fft-filter/internal/model"
	"github.com/drakos74/fft-filter/internal/storage"
)

// Sink writes json encoded readings, one per line.
type Sink struct {
	name    string
	writer  *bufio.Writer
	encoder *json.Encoder
	closer  io.Closer
}

// NewSink creates a sink on top of the given writer.
func NewSink(name string, writer io.Writer) *Sink {
	w := bufio.NewWriter(writer)
	return &Sink{
		name:    name,
		writer:  w,
		encoder: json.NewEncoder(w),
	}
}

// CreateSink creates the file at the given path, or uses stdout for '-'.
func CreateSink(filePath string) (*Sink, error) {
	if filePath == storage.Std || filePath == "" {
		return NewSink("stdout", os.Stdout), nil
	}
	dir := filepath.Dir(filePath)
	// check if the dir exists
	info, err := os.Stat(dir)
	if err != nil {
		err := os.MkdirAll(dir, os.ModePerm)
		if err != nil {
			return nil, fmt.Errorf("could not make dir: %s: %w", dir, err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("path given is not a dir: %s", dir)
	}
	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("could not create file '%s': %w", filePath, err)
	}
	s := NewSink(filePath, f)
	s.closer = f
	return s, nil
}

// Write implements api.Sink.
func (s *Sink) Write(reading *model.Reading) error {
	if s.encoder == nil {
		return fmt.Errorf("sink '%s': %w", s.name, storage.ClosedErr)
	}
	if err := s.encoder.Encode(reading); err != nil {
		return fmt.Errorf("could not encode reading '%s': %w", reading.Asset, err)
	}
	return nil
}

// Close flushes the pending readings and closes the underlying file.
func (s *Sink) Close() error {
	if s.encoder == nil {
		return nil
	}
	s.encoder = nil
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("could not flush sink '%s': %w", s.name, err)
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
