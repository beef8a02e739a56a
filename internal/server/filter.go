package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/drakos74/fft-filter/internal/algo/fft"
)

// Filter is the part of the filter exposed over http.
type Filter interface {
	Config() fft.Config
	Reconfigure(category fft.Category) (fft.Config, error)
	Buffered() map[string]int
}

// FilterRoutes returns the routes for inspecting and reconfiguring the filter.
func FilterRoutes(filter Filter, debug bool) []Route {
	return []Route{
		{
			Action: Api,
			Path:   "config",
			Method: GET,
			Exec: func(r *http.Request) ([]byte, int, error) {
				b, err := json.Marshal(filter.Config())
				return b, http.StatusOK, err
			},
		},
		{
			Action: Api,
			Path:   "config",
			Method: POST,
			Exec: func(r *http.Request) ([]byte, int, error) {
				var items map[string]json.RawMessage
				if err := JsonRead(r, debug, &items); err != nil {
					return nil, http.StatusBadRequest, fmt.Errorf("could not decode category: %w", err)
				}
				category, err := categoryOf(items)
				if err != nil {
					return nil, http.StatusBadRequest, err
				}
				config, err := filter.Reconfigure(category)
				if errors.Is(err, fft.ErrInvalidConfig) {
					return nil, http.StatusUnprocessableEntity, err
				} else if err != nil {
					return nil, http.StatusInternalServerError, err
				}
				b, err := json.Marshal(config)
				return b, http.StatusOK, err
			},
		},
		{
			Action: Api,
			Path:   "buffers",
			Method: GET,
			Exec: func(r *http.Request) ([]byte, int, error) {
				b, err := json.Marshal(filter.Buffered())
				return b, http.StatusOK, err
			},
		},
	}
}

// categoryOf keeps the literal text of every item.
// Items are strings, but plain json numbers and bools are accepted as well.
func categoryOf(items map[string]json.RawMessage) (fft.Category, error) {
	category := make(fft.Category, len(items))
	for k, raw := range items {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '"' {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, fmt.Errorf("could not decode item '%s': %w", k, err)
			}
			category[k] = s
			continue
		}
		category[k] = string(raw)
	}
	return category, nil
}
