package segment

import (
	"bytes"
	"encoding/gob"
)

// GobEncode lets Segments be embedded directly in gob-encoded structures
// (fragments, IPC payloads) without exposing the internal list field.
func (s *Segments) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s.list); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode is the inverse of GobEncode.
func (s *Segments) GobDecode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(&s.list)
}
