package checklist

import (
	"errors"
	"fmt"
	"os"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/checksum"
	"github.com/starford/coursebook/internal/parser"
	"github.com/starford/coursebook/internal/storage"
)

// Toggle sets the done marker of the item on line and writes the checklist
// back atomically. When ifMatch is non-empty it must equal the checksum of
// the file on disk. Returns the new file contents.
func Toggle(store storage.Provider, path string, line int, done bool, ifMatch string) ([]byte, error) {
	data, err := store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(data) {
		return nil, apperr.ErrConflict
	}
	out, ok := parser.SetChecked(data, line, done)
	if !ok {
		return nil, fmt.Errorf("checklist: line %d: %w", line, apperr.ErrNotFound)
	}
	if err := store.Write(path, out); err != nil {
		return nil, err
	}
	return out, nil
}
