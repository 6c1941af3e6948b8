package ordered

import (
	"bytes"
	"encoding/json"
)

// marshalOrdered renders a JSON object whose key order matches keys,
// working around encoding/json's randomized map key ordering.
func marshalOrdered[V any](keys []string, lookup func(string) (V, bool)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	wrote := 0
	for _, k := range keys {
		v, ok := lookup(k)
		if !ok {
			continue
		}
		if wrote > 0 {
			buf.WriteByte(',')
		}
		wrote++
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		valJSON, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
