package spider

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an upstream identifier that may be published as a JSON string or
// number.
type ID string

func (i *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		*i = ID(s)
		return nil
	}

	var n json.Number
	err := json.Unmarshal(data, &n)
	if err != nil {
		return fmt.Errorf("id is neither a string nor a number: %s", data)
	}
	*i = ID(n.String())
	return nil
}

func (i ID) String() string {
	return string(i)
}

// DecodeJSON decodes a payload into out, wrapping the error with what was
// being decoded.
func DecodeJSON(what string, body []byte, out any) error {
	err := json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("decode %s: %w", what, err)
	}
	return nil
}

// EncodeJSON renders v the way raw payloads are archived: four space
// indent, html left unescaped.
func EncodeJSON(v any) ([]byte, error) {
	buf := bytes.Buffer{}
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	err := encoder.Encode(v)
	if err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
