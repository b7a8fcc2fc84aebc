package model

import (
	"strconv"
	"time"
)

// JobView is the outward projection of a Job returned to pollers.
type JobView struct {
	JobID            string     `json:"job_id"`
	Status           JobStatus  `json:"status"`
	JobType          JobKind    `json:"job_type"`
	UserMessage      string     `json:"user_message,omitempty"`
	AIResponse       string     `json:"ai_response,omitempty"`
	OriginalFilename string     `json:"original_filename,omitempty"`
	FileType         string     `json:"file_type,omitempty"`
	FileSize         int64      `json:"file_size,omitempty"`
	AnalysisResult   string     `json:"analysis_result,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at"`
}

func (j *Job) View() JobView {
	v := JobView{
		JobID:       j.ID,
		Status:      j.Status,
		JobType:     j.Kind,
		CreatedAt:   j.CreatedAt,
		CompletedAt: j.CompletedAt,
	}
	switch j.Kind {
	case JobKindMessage:
		v.UserMessage = j.Message
		v.AIResponse = j.Result
	case JobKindFile:
		if j.File != nil {
			v.OriginalFilename = j.File.OriginalName
			v.FileType = j.File.Extension
			v.FileSize = j.File.Size
		}
		v.AnalysisResult = j.Result
	}
	return v
}

// Preview is a one-line description used by job listings.
func (j *Job) Preview() string {
	if j.Kind == JobKindFile && j.File != nil {
		return j.File.OriginalName + " (" + strconv.FormatInt(j.File.Size, 10) + " bytes)"
	}
	r := []rune(j.Message)
	if len(r) > 50 {
		return string(r[:50]) + "..."
	}
	return j.Message
}
