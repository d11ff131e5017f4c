package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexStrings decodes a string list the backend sends either as a JSON
// array, as a JSON-encoded array inside a string, or as null.
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*f = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return fmt.Errorf("expected string list, got %s", trimmed)
	}
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		*f = nil
		return nil
	}
	if strings.HasPrefix(encoded, "[") {
		if err := json.Unmarshal([]byte(encoded), &list); err != nil {
			return fmt.Errorf("decoding embedded string list: %w", err)
		}
		*f = list
		return nil
	}
	*f = FlexStrings{encoded}
	return nil
}

// String joins the list for display.
func (f FlexStrings) String() string {
	return strings.Join(f, ", ")
}
