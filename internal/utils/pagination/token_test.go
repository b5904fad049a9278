package pagination_test

import (
	"testing"
	"time"

	"github.com/shipdesk/settlement-core/internal/utils/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 2, 1, 12, 30, 45, 123456789, time.UTC)

	token := pagination.EncodeToken(createdAt, "TXN-20260201T123045-ABCD1234")

	gotTime, gotID, err := pagination.DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(gotTime))
	assert.Equal(t, "TXN-20260201T123045-ABCD1234", gotID)
}

func TestDecodeTokenRejectsGarbage(t *testing.T) {
	_, _, err := pagination.DecodeToken("not-base64!!!")
	assert.Error(t, err)

	_, _, err = pagination.DecodeToken("bm8tc2VwYXJhdG9y") // "no-separator"
	assert.Error(t, err)
}
