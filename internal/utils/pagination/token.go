package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// EncodeToken creates a base64 token from a creation time and a row id, used
// for keyset pagination across repositories.
func EncodeToken(createdAt time.Time, rowID string) string {
	tokenStr := fmt.Sprintf("%s|%s", createdAt.Format(timeFormat), rowID)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token back into the creation time and row id.
func DecodeToken(token string) (time.Time, string, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (split)")
	}
	createdAt, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (time parse): %w", err)
	}
	return createdAt, parts[1], nil
}
