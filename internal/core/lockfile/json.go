package lockfile

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeObject walks a JSON object token by token, calling visit once per
// key with a decoder positioned at the key's value. The plain
// encoding/json map decoding silently keeps the last of two duplicate keys;
// walking tokens lets field handlers reject duplicates and unknown keys,
// which the lock format treats as structural errors.
func decodeObject(data []byte, visit func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := visit(key, dec); err != nil {
			return err
		}
	}
	_, err = dec.Token() // closing brace
	return err
}

// decodeValue decodes the next value from dec into v, for use inside a
// decodeObject visit callback.
func decodeValue(dec *json.Decoder, v interface{}) error {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
