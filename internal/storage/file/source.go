package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/drakos74/fft-filter/internal/model"
	"github.com/drakos74/fft-filter/internal/storage"
	"github.com/rs/zerolog/log"
)

const maxLine = 1 << 20

// Source reads json encoded readings, one per line.
type Source struct {
	name   string
	reader io.Reader
	closer io.Closer
}

// NewSource creates a source on top of the given reader.
func NewSource(name string, reader io.Reader) *Source {
	return &Source{
		name:   name,
		reader: reader,
	}
}

// OpenSource opens the file at the given path, or stdin for '-'.
func OpenSource(filePath string) (*Source, error) {
	if filePath == storage.Std || filePath == "" {
		return NewSource("stdin", os.Stdin), nil
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("could not open file '%s' %s: %w", filePath, err.Error(), storage.NotFoundErr)
	}
	s := NewSource(filePath, f)
	s.closer = f
	return s, nil
}

// Readings implements api.Source.
// Lines that cannot be decoded are logged and skipped.
func (s *Source) Readings(ctx context.Context) (<-chan *model.Reading, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("source '%s': %w", s.name, storage.ClosedErr)
	}
	readings := make(chan *model.Reading)
	go func() {
		defer func() {
			if s.closer != nil {
				if err := s.closer.Close(); err != nil {
					log.Error().Err(err).Str("source", s.name).Msg("could not close source")
				}
			}
			close(readings)
		}()
		scanner := bufio.NewScanner(s.reader)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
		line := 0
		for scanner.Scan() {
			line++
			b := scanner.Bytes()
			if len(b) == 0 {
				continue
			}
			reading, err := decode(b)
			if err != nil {
				log.Warn().Err(err).Str("source", s.name).Int("line", line).Msg("could not decode reading")
				continue
			}
			select {
			case readings <- reading:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			log.Error().Err(err).Str("source", s.name).Int("line", line).Msg("could not read source")
		}
	}()
	return readings, nil
}

// Close releases the underlying file of a source that was never read.
// Once Readings was called, the file is closed when the stream ends.
func (s *Source) Close() error {
	s.reader = nil
	if s.closer == nil {
		return nil
	}
	closer := s.closer
	s.closer = nil
	return closer.Close()
}

func decode(b []byte) (*model.Reading, error) {
	var reading model.Reading
	if err := json.Unmarshal(b, &reading); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), storage.CouldNotLoadErr)
	}
	return &reading, nil
}
