package providers

import (
	"fmt"
	"os"

	"howett.net/plist"
)

// PlistMetadata reads fields from Apple property list files (Info.plist
// and friends), in any of the plist encodings.
type PlistMetadata struct{}

func (PlistMetadata) ReadField(path, key string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadableMetadata, path, err)
	}
	defer f.Close()

	var dict map[string]any
	if err := plist.NewDecoder(f).Decode(&dict); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadableMetadata, path, err)
	}

	value, ok := dict[key]
	if !ok {
		return "", fmt.Errorf("%w: %q in %s", ErrFieldMissing, key, path)
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	return fmt.Sprint(value), nil
}
