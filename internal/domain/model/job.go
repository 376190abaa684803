package model

import "time"

// Job is the job posting a conversation is about. Only the fields needed for
// prompt assembly are modelled here.
type Job struct {
	ID                   string
	UserID               string
	Title                string
	ProcessedDescription string
	CreatedAt            time.Time
}

// JobContext is the read-only snapshot of a job captured at admission time.
type JobContext struct {
	Title                string `json:"jobTitle"`
	ProcessedDescription string `json:"processedDescription"`
}

func (j *Job) Context() JobContext {
	return JobContext{Title: j.Title, ProcessedDescription: j.ProcessedDescription}
}

// GenerationTask is the unit of work enqueued by the intake gate. Its ID is
// the id of the USER message that triggered it.
type GenerationTask struct {
	ID      string     `json:"id"`
	JobID   string     `json:"jobId"`
	UserID  string     `json:"userId"`
	Message string     `json:"message"`
	Job     JobContext `json:"job"`
}

type GenerationJobStatus string

const (
	GenerationJobPending    GenerationJobStatus = "pending"
	GenerationJobProcessing GenerationJobStatus = "processing"
	GenerationJobCompleted  GenerationJobStatus = "completed"
	GenerationJobFailed     GenerationJobStatus = "failed"
)

// GenerationJob is the durable envelope of a GenerationTask when the queue
// dispatcher is used.
type GenerationJob struct {
	ID        string
	Status    GenerationJobStatus
	Task      GenerationTask
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}
