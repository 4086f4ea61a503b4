package ai

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const defaultImageMIME = "image/jpeg"

// DecodeDataURI splits a data URI into its MIME type and raw bytes.
// A missing or malformed MIME segment falls back to image/jpeg.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data uri missing payload")
	}
	mime := defaultImageMIME
	if m, _, found := strings.Cut(meta, ";"); found && m != "" {
		mime = m
	} else if !found && meta != "" && !strings.EqualFold(meta, "base64") {
		mime = meta
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri payload: %w", err)
	}
	return mime, data, nil
}

// EncodeDataURI packs raw bytes into a base64 data URI.
func EncodeDataURI(mime string, data []byte) string {
	if mime == "" {
		mime = defaultImageMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
