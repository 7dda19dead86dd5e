package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	encoded := EncodeCursor(createdAt, "doc-42")
	decoded, err := DecodeCursor(encoded)

	require.NoError(t, err)
	assert.True(t, decoded.CreatedAt.Equal(createdAt))
	assert.Equal(t, "doc-42", decoded.DocID)
}

func TestDecodeCursorEmpty(t *testing.T) {
	decoded, err := DecodeCursor("")

	assert.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeCursorGarbage(t *testing.T) {
	_, err := DecodeCursor("not base64!!!")
	assert.Error(t, err)

	// Valid base64 but not a cursor payload.
	_, err = DecodeCursor("bm90IGpzb24=")
	assert.Error(t, err)
}
