package wggesucht

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// EntryDateLayout is the format of date_of_entry_details, e.g. "22.10.2025, 17:15:01".
const EntryDateLayout = "02.01.2006, 15:04:05"

func parseEntryDate(raw string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(EntryDateLayout, strings.TrimSpace(raw), loc)
}

func berlin() *time.Location {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		return time.UTC
	}

	return loc
}

// rawString accepts ids the API sends either as JSON strings or numbers.
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	return string(raw)
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, strconv.Itoa(value))
	}

	return strings.Join(parts, ",")
}
