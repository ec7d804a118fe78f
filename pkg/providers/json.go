package providers

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// JSONKey extracts a value from a JSON document by gjson path. Non-string
// values are returned in their JSON rendering.
func JSONKey(data []byte, key string) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%w: body is not valid JSON", ErrUnreadableMetadata)
	}
	result := gjson.GetBytes(data, key)
	if !result.Exists() {
		return "", fmt.Errorf("%w: %q", ErrFieldMissing, key)
	}
	return result.String(), nil
}
