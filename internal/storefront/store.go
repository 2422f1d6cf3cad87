package storefront

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// CartStore is the local persistence for anonymous carts, the equivalent
// of the browser's local storage. Implementations must round-trip the
// id -> quantity map unchanged.
type CartStore interface {
	Load() (map[string]int, error)
	Save(cart map[string]int) error
}

// FileCartStore keeps the cart snapshot in a JSON file. A missing file
// reads as an empty cart.
type FileCartStore struct {
	Path string
}

func NewFileCartStore(path string) *FileCartStore {
	return &FileCartStore{Path: path}
}

func (s *FileCartStore) Load() (map[string]int, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]int{}, nil
		}
		return nil, err
	}

	cart := map[string]int{}
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *FileCartStore) Save(cart map[string]int) error {
	if cart == nil {
		cart = map[string]int{}
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(s.Path, data, 0o644)
}
