// Package iojson holds helpers for reading and writing JSON from a command
// line interface.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

func jsonError(msg string, jsonErr error) string {
	// json.Marshal escapes the strings for us.
	msgBytes, _ := json.Marshal(msg)
	errBytes, _ := json.Marshal(jsonErr.Error())
	return fmt.Sprintf(`{"message":%s,"data":{"json_error":%s}}`, msgBytes, errBytes)
}

// WriteLine writes obj as a single line of JSON to w. Marshal failures are
// reported as a JSON error on ew.
func WriteLine(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		_, err = fmt.Fprintln(ew, jsonError("error marshaling in iojson.WriteLine", err))
		return err
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}
