package usecase

import (
	"fmt"
	"strings"

	"ai-chat-assistant/internal/domain/model"
	"ai-chat-assistant/internal/domain/ports/adapter"
)

const (
	compactTurns      = 3
	compactReplyChars = 80
	profileListLimit  = 3
)

// MessagePrompt renders the prompt for a chat message in the given style.
func MessagePrompt(style adapter.PromptStyle, text string, oc model.OptimizedContext) string {
	if style == adapter.PromptCompact {
		return compactMessagePrompt(text, oc)
	}
	return fullMessagePrompt(text, oc)
}

func fullMessagePrompt(text string, oc model.OptimizedContext) string {
	lines := make([]string, 0, len(oc.Selected)*2)
	for _, it := range oc.Selected {
		switch it.Kind {
		case model.JobKindMessage:
			lines = append(lines, "User: "+it.UserText)
			if it.AIText != "" {
				lines = append(lines, "AI: "+it.AIText)
			}
		case model.JobKindFile:
			lines = append(lines, fmt.Sprintf("User uploaded file: %s (%s)", it.FileName, it.FileType))
			if it.AnalysisText != "" {
				lines = append(lines, "AI: "+it.AnalysisText)
			}
		}
	}

	userInfo := profileLine(oc.Profile)
	if len(lines) == 0 && userInfo == "" {
		return "You are a helpful AI assistant. Please respond to this message in a conversational and helpful way:\n\n" +
			"User: " + text + "\n\n" +
			"Provide a clear, concise, and helpful response."
	}

	conversation := "This is the start of our conversation."
	if len(lines) > 0 {
		conversation = strings.Join(lines, "\n")
	}
	if userInfo != "" {
		userInfo = "\n\nImportant user information: " + userInfo + "."
	}
	return "You are a helpful AI assistant. Here is our conversation context (intelligently optimized):\n\n" +
		conversation + userInfo + "\n\n" +
		"User: " + text + "\n\n" +
		"Please respond to the user's latest message in a conversational and helpful way, taking into account our conversation history and any user information above. Be personal and contextual in your response."
}

func profileLine(p model.UserProfile) string {
	var parts []string
	if p.Name != "" {
		parts = append(parts, "The user's name is "+p.Name)
	}
	if len(p.Preferences) > 0 {
		parts = append(parts, "They like: "+strings.Join(head(p.Preferences, profileListLimit), ", "))
	}
	if len(p.Dislikes) > 0 {
		parts = append(parts, "They dislike: "+strings.Join(head(p.Dislikes, profileListLimit), ", "))
	}
	return strings.Join(parts, ". ")
}

// compactMessagePrompt keeps the name and the last few message turns with
// shortened replies, for providers with small inputs.
func compactMessagePrompt(text string, oc model.OptimizedContext) string {
	var parts []string
	if oc.Profile.Name != "" {
		parts = append(parts, "User name: "+oc.Profile.Name)
	}
	recent := oc.Selected
	if len(recent) > compactTurns {
		recent = recent[len(recent)-compactTurns:]
	}
	for _, it := range recent {
		if it.Kind != model.JobKindMessage {
			continue
		}
		parts = append(parts, "Previous - User: "+it.UserText)
		if it.AIText != "" {
			parts = append(parts, "Previous - AI: "+truncateRunes(it.AIText, compactReplyChars)+"...")
		}
	}
	if len(parts) == 0 {
		return "Answer this question helpfully: " + text
	}
	return "Context: " + strings.Join(parts, " | ") + " \n\nCurrent question: " + text
}

// FilePrompt renders a file-analysis prompt. Only metadata is described.
func FilePrompt(style adapter.PromptStyle, f model.FilePayload) string {
	if style == adapter.PromptCompact {
		return fmt.Sprintf("Analyze this %s file named '%s' with size %d bytes. Provide insights about its likely content and purpose.",
			f.Extension, f.OriginalName, f.Size)
	}

	var kind, ask string
	switch model.ClassifyFile(f.Extension) {
	case model.FileClassDocument:
		kind = "document file"
		ask = "Please provide a brief analysis of what this document likely contains based on its characteristics. Focus on the document type, estimated content, and general insights."
	case model.FileClassImage:
		kind = "image file"
		ask = "Please provide a brief analysis of this image file based on its characteristics."
	case model.FileClassData:
		kind = "data file"
		ask = "Please provide a brief analysis of this data file and what it likely contains."
	default:
		kind = "file"
		ask = "Please provide a brief analysis of this file based on its characteristics."
	}
	return fmt.Sprintf("Analyze this %s:\n- Filename: %s\n- Type: %s\n- Size: %d bytes\n\n%s",
		kind, f.OriginalName, f.Extension, f.Size, ask)
}

const MessageApology = "I apologize, but I'm currently experiencing technical difficulties connecting to my AI services. " +
	"Your message has been received, and I understand you're asking about something important. " +
	"While I can't provide a detailed response right now, please feel free to try again in a moment, or rephrase your question. " +
	"Thank you for your patience! 🤖"

// FileApology is the degraded-service answer for an upload.
func FileApology(f model.FilePayload) string {
	return fmt.Sprintf("📁 I've received your %s file '%s' (%s size: %d bytes) and it uploaded successfully! "+
		"Unfortunately, I'm currently experiencing technical difficulties with my AI analysis services, so I can't provide detailed insights right now. "+
		"Your file appears to be in a valid format. Please try uploading again in a moment, or contact support if the issue persists. "+
		"Thank you for your patience! 🤖", f.Extension, f.OriginalName, sizeClass(f.Size), f.Size)
}

func sizeClass(n int64) string {
	switch {
	case n < 1024:
		return "small"
	case n < 1024*1024:
		return "medium"
	default:
		return "large"
	}
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
