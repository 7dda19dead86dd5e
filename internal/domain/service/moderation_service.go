package service

import "strings"

// ModerationService screens user content before delivery. Moderation is
// advisory: a failing result flags the content for human review, it never
// blocks delivery.
type ModerationService interface {
	Check(content string) (flagged bool, reasons []string)
}

type keywordModerationService struct {
	blocklist []string
}

func NewKeywordModerationService(blocklist []string) ModerationService {
	if len(blocklist) == 0 {
		blocklist = defaultBlocklist
	}
	return &keywordModerationService{blocklist: blocklist}
}

var defaultBlocklist = []string{
	"spam",
	"scam",
	"free money",
	"wire transfer",
}

func (m *keywordModerationService) Check(content string) (bool, []string) {
	lowered := strings.ToLower(content)

	var reasons []string
	for _, word := range m.blocklist {
		if strings.Contains(lowered, word) {
			reasons = append(reasons, "keyword:"+word)
		}
	}

	return len(reasons) > 0, reasons
}
