package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

var errInvalidID = errors.New("id must be a positive integer or a string")

// ID accepts either a JSON number or a JSON string. Numbers must be
// positive integers, matching relational serials; strings carry UUIDs.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil || n <= 0 {
		return errInvalidID
	}
	*id = ID(strconv.FormatInt(n, 10))
	return nil
}
