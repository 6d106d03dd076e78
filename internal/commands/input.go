package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// readPayload decodes --data into v. "-" reads stdin and "@path" reads a file.
// Unknown fields are rejected so typos fail before reaching the backend.
func (a *app) readPayload(data string, v any) error {
	var raw []byte
	switch {
	case data == "":
		return fmt.Errorf("--data is required (JSON, @file or - for stdin)")
	case data == "-":
		b, err := io.ReadAll(a.in)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		raw = b
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(data[1:])
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}
		raw = b
	default:
		raw = []byte(data)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// prompt asks for a value on stdin when it was not given as a flag.
func (a *app) prompt(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(a.errOut, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
