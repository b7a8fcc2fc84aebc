package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"ai-chat-assistant/internal/domain/model"
	"ai-chat-assistant/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*DummyAdapter)(nil)

const ProviderDummy = "dummy"

var greetingRe = regexp.MustCompile(`\b(hello|hi)\b`)

// DummyAdapter produces deterministic canned text with no network access.
type DummyAdapter struct{}

func NewDummyAdapter() *DummyAdapter { return &DummyAdapter{} }

func (DummyAdapter) Name() string { return ProviderDummy }

// Generate treats the whole prompt as the user message.
func (d DummyAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.Reply(prompt), nil
}

// Reply branches on greetings, help requests and questions.
func (DummyAdapter) Reply(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case greetingRe.MatchString(lower):
		return "Hello! Nice to meet you. How can I assist you today?"
	case strings.Contains(lower, "help"):
		return "I'm here to help! Feel free to ask me anything you'd like to know."
	case strings.Contains(msg, "?"):
		return fmt.Sprintf("That's a great question about '%s'. Let me provide some insights...", msg)
	}
	responses := [...]string{
		"I understand you mentioned: '%s'. That's interesting!",
		"Thank you for sharing '%s' with me. How can I help you with that?",
		"Regarding your message about '%s', I'd be happy to assist you.",
	}
	return fmt.Sprintf(responses[len([]rune(msg))%len(responses)], msg)
}

// AnalyzeFile branches on the file's media class.
func (DummyAdapter) AnalyzeFile(name, ext string, size int64) string {
	switch model.ClassifyFile(ext) {
	case model.FileClassDocument:
		return fmt.Sprintf("📄 Document Analysis: '%s' (%d bytes) appears to be a text document. I've analyzed the content structure and found it contains readable text data.", name, size)
	case model.FileClassImage:
		return fmt.Sprintf("🖼️ Image Analysis: '%s' (%d bytes) is an image file. I've processed the visual content and detected various elements.", name, size)
	case model.FileClassData:
		return fmt.Sprintf("📊 Data Analysis: '%s' (%d bytes) contains structured data. I've parsed the format and the structure appears valid.", name, size)
	default:
		return fmt.Sprintf("📁 File Analysis: '%s' (%d bytes) has been processed and appears to be in a supported format.", name, size)
	}
}
