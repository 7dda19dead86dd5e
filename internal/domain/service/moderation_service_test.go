package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordModerationFlagsBlocklistedContent(t *testing.T) {
	moderation := NewKeywordModerationService(nil)

	flagged, reasons := moderation.Check("get FREE MONEY now, not a scam")

	assert.True(t, flagged)
	assert.Contains(t, reasons, "keyword:free money")
	assert.Contains(t, reasons, "keyword:scam")
}

func TestKeywordModerationPassesCleanContent(t *testing.T) {
	moderation := NewKeywordModerationService(nil)

	flagged, reasons := moderation.Check("see you at the show tonight")

	assert.False(t, flagged)
	assert.Empty(t, reasons)
}

func TestKeywordModerationCustomBlocklist(t *testing.T) {
	moderation := NewKeywordModerationService([]string{"banned"})

	flagged, _ := moderation.Check("spam is fine on this list")
	assert.False(t, flagged)

	flagged, reasons := moderation.Check("this word is BANNED here")
	assert.True(t, flagged)
	assert.Equal(t, []string{"keyword:banned"}, reasons)
}
