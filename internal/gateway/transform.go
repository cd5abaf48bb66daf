package gateway

import (
	"encoding/json"
	"unicode"
	"unicode/utf8"
)

// capitalizeKeys upper-cases the first character of every top-level key of a
// JSON object (e.g. "email" becomes "Email"). Nested object keys are left
// untouched. The backend reads request fields in this exact shallow
// convention; changing it breaks field binding server-side.
//
// Non-object payloads pass through unchanged.
func capitalizeKeys(raw []byte) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		// arrays, strings, numbers: transmitted as-is
		return raw, nil
	}
	if obj == nil {
		// a JSON null decodes without error but is not an object
		return raw, nil
	}

	out := make(map[string]json.RawMessage, len(obj))
	for key, value := range obj {
		out[capitalizeFirst(key)] = value
	}

	return json.Marshal(out)
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
