package parser

import "encoding/json"

// JSONParser is the default Parser: human-readable, dependency-free, and
// forgiving of schema drift between what was written and what's read back.
type JSONParser struct{}

func (p *JSONParser) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (p *JSONParser) Unmarshal(b []byte, v any) error {
	return json.Unmarshal(b, &v)
}
