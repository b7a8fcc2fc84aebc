//go:build !integration

package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"ai-chat-assistant/internal/domain"
)

// --- Job Model Tests ---

func TestNewMessageJob(t *testing.T) {
	now := time.Now()

	t.Run("should create a pending message job", func(t *testing.T) {
		job, err := NewMessageJob("job-1", "  hello there  ", now)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if job.Status != JobStatusPending {
			t.Errorf("expected status pending, but got %s", job.Status)
		}
		if job.Kind != JobKindMessage {
			t.Errorf("expected kind message, but got %s", job.Kind)
		}
		if job.Message != "hello there" {
			t.Errorf("expected trimmed message, but got %q", job.Message)
		}
		if job.CompletedAt != nil {
			t.Error("expected CompletedAt to be nil for a pending job")
		}
	})

	t.Run("should reject blank text", func(t *testing.T) {
		_, err := NewMessageJob("job-1", "   \n\t", now)
		if !errors.Is(err, domain.ErrEmptyMessage) {
			t.Fatalf("expected ErrEmptyMessage, but got %v", err)
		}
		if !domain.IsValidation(err) {
			t.Error("expected empty message to be a validation error")
		}
	})

	t.Run("should reject empty id", func(t *testing.T) {
		_, err := NewMessageJob("", "hi", now)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, but got %v", err)
		}
	})
}

func TestNewFileJob(t *testing.T) {
	t.Run("should require a filename", func(t *testing.T) {
		_, err := NewFileJob("job-1", FilePayload{}, time.Now())
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, but got %v", err)
		}
	})

	t.Run("should copy the payload", func(t *testing.T) {
		payload := FilePayload{OriginalName: "a.csv", Extension: ".csv", Size: 10}
		job, err := NewFileJob("job-1", payload, time.Now())
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		payload.OriginalName = "changed"
		if job.File.OriginalName != "a.csv" {
			t.Errorf("job payload must not alias caller struct")
		}
	})
}

func TestJobTransitions(t *testing.T) {
	now := time.Now()

	t.Run("pending to processing to done", func(t *testing.T) {
		job, _ := NewMessageJob("j", "hi", now)
		if err := job.Start(); err != nil {
			t.Fatalf("start: %v", err)
		}
		if job.Status != JobStatusProcessing {
			t.Fatalf("expected processing, got %s", job.Status)
		}
		if err := job.Complete("answer", now); err != nil {
			t.Fatalf("complete: %v", err)
		}
		if job.Status != JobStatusDone || job.Result != "answer" || job.CompletedAt == nil {
			t.Fatalf("unexpected terminal job: %+v", job)
		}
		if !job.IsTerminal() {
			t.Error("done job should be terminal")
		}
	})

	t.Run("terminal states are immutable", func(t *testing.T) {
		job, _ := NewMessageJob("j", "hi", now)
		_ = job.Start()
		_ = job.Fail("boom", now)

		if err := job.Complete("late", now); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		if err := job.Start(); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		if job.Status != JobStatusError || job.Result != "boom" {
			t.Errorf("terminal job changed: %+v", job)
		}
	})

	t.Run("cannot finish a pending job", func(t *testing.T) {
		job, _ := NewMessageJob("j", "hi", now)
		if err := job.Complete("x", now); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestJobCloneAndProjections(t *testing.T) {
	now := time.Now()
	job, _ := NewFileJob("f", FilePayload{OriginalName: "report.pdf", Extension: ".pdf", Size: 2048}, now)
	_ = job.Start()
	_ = job.Complete("summary", now)

	c := job.Clone()
	c.File.OriginalName = "other.pdf"
	*c.CompletedAt = now.Add(time.Hour)
	if job.File.OriginalName != "report.pdf" || !job.CompletedAt.Equal(now) {
		t.Fatal("clone must not share pointers with the original")
	}

	item, ok := job.ContextItem()
	if !ok {
		t.Fatal("done job should project to a context item")
	}
	if item.FileName != "report.pdf" || item.AnalysisText != "summary" || item.FileSize != 2048 {
		t.Errorf("unexpected context item: %+v", item)
	}

	view := job.View()
	if view.JobType != JobKindFile || view.AnalysisResult != "summary" || view.UserMessage != "" {
		t.Errorf("unexpected view: %+v", view)
	}
	if got := job.Preview(); got != "report.pdf (2048 bytes)" {
		t.Errorf("unexpected preview %q", got)
	}

	pending, _ := NewMessageJob("m", strings.Repeat("x", 60), now)
	if _, ok := pending.ContextItem(); ok {
		t.Error("pending job must not appear in context")
	}
	if got := pending.Preview(); got != strings.Repeat("x", 50)+"..." {
		t.Errorf("unexpected preview %q", got)
	}
}

func TestContextItemLength(t *testing.T) {
	msg := ContextItem{Kind: JobKindMessage, UserText: "héllo", AIText: "ok"}
	if msg.Len() != 7 {
		t.Errorf("expected rune length 7, got %d", msg.Len())
	}
	file := ContextItem{Kind: JobKindFile, FileName: "a.txt", AnalysisText: "abc"}
	if file.Len() != 8 {
		t.Errorf("expected 8, got %d", file.Len())
	}
}
