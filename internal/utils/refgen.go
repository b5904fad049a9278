package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// randomSuffix returns n hex characters of a fresh UUID, uppercased.
func randomSuffix(n int) string {
	s := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

// NewTransactionRef generates a globally unique, human-traceable ledger entry
// reference. The embedded UTC timestamp keeps references monotonic enough for
// display ordering; the random suffix guarantees uniqueness.
func NewTransactionRef(now time.Time) string {
	return fmt.Sprintf("TXN-%s-%s", now.UTC().Format("20060102T150405"), randomSuffix(8))
}

// clientFragment derives a short, stable client marker for remittance numbers.
func clientFragment(clientID string) string {
	frag := strings.ToUpper(strings.ReplaceAll(clientID, "-", ""))
	if len(frag) > 6 {
		frag = frag[:6]
	}
	return frag
}

// NewRemittanceNumber builds the deterministic remittance number for a
// (client, settlement date) batch. Callers must collision-check against the
// unique constraint and fall back to NewRemittanceNumberWithSuffix.
func NewRemittanceNumber(clientID string, settlementDate time.Time) string {
	return fmt.Sprintf("REM-%s-%s", settlementDate.UTC().Format("20060102"), clientFragment(clientID))
}

// NewRemittanceNumberWithSuffix disambiguates a colliding remittance number.
func NewRemittanceNumberWithSuffix(clientID string, settlementDate time.Time) string {
	return fmt.Sprintf("%s-%s", NewRemittanceNumber(clientID, settlementDate), randomSuffix(4))
}
