package research

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSON returns the JSON object in a model response. A ```json fenced
// block is preferred; otherwise the whole response must be an object.
func ExtractJSON(text string) (json.RawMessage, bool) {
	candidate := strings.TrimSpace(text)
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	}
	if !strings.HasPrefix(candidate, "{") || !json.Valid([]byte(candidate)) {
		return nil, false
	}
	return json.RawMessage(candidate), true
}

// decode extracts and unmarshals a response into v.
func decode(text string, v any) bool {
	raw, ok := ExtractJSON(text)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}
