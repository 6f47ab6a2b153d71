package publicapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Resume is a decoded resume envelope. PDF is set for the pdf format,
// Document for json.
type Resume struct {
	Format   string
	PDF      []byte
	Document map[string]any
}

type resumeEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// DecodeResume unpacks the {"data": ...} envelope returned by the resume endpoint.
func DecodeResume(format string, resp Response) (Resume, error) {
	if resp == nil {
		return Resume{}, errors.New("resume response is nil")
	}

	var env resumeEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return Resume{}, fmt.Errorf("decode resume envelope: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return Resume{}, errors.New("resume envelope has no data")
	}

	format = strings.ToLower(strings.TrimSpace(format))
	out := Resume{Format: format}

	switch format {
	case FormatPDF:
		var encoded string
		if err := json.Unmarshal(env.Data, &encoded); err != nil {
			return Resume{}, fmt.Errorf("decode pdf resume data: %w", err)
		}
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return Resume{}, fmt.Errorf("decode pdf resume base64: %w", err)
		}
		out.PDF = raw
	case FormatJSON:
		if err := json.Unmarshal(env.Data, &out.Document); err != nil {
			return Resume{}, fmt.Errorf("decode json resume data: %w", err)
		}
	default:
		return Resume{}, fmt.Errorf("unsupported resume format %q", format)
	}

	return out, nil
}
