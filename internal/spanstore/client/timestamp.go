package client

import (
	"strings"
	"time"
)

// NormalizeTimestampToNanoseconds parses an ISO timestamp string to
// nanosecond precision, padding or truncating the fractional part so
// recordings from emitters with different precision all parse.
func NormalizeTimestampToNanoseconds(timestamp string) (time.Time, error) {
	isUTC := strings.HasSuffix(timestamp, "Z")
	if isUTC {
		timestamp = strings.TrimSuffix(timestamp, "Z")
	}

	if !strings.Contains(timestamp, ".") {
		timestamp += ".000000000"
	} else {
		parts := strings.SplitN(timestamp, ".", 2)
		if len(parts) == 2 {
			fractionalPart := parts[1]
			if len(fractionalPart) > 9 {
				fractionalPart = fractionalPart[:9]
			} else if len(fractionalPart) < 9 {
				fractionalPart = fractionalPart + strings.Repeat("0", 9-len(fractionalPart))
			}
			timestamp = parts[0] + "." + fractionalPart
		}
	}

	layout := "2006-01-02T15:04:05.999999999"
	parsed, err := time.Parse(layout, timestamp)
	if err != nil {
		return time.Time{}, err
	}
	if isUTC {
		return parsed.UTC(), nil
	}
	return parsed, nil
}
