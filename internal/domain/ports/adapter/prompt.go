package adapter

import "job-insight-chat/internal/domain/model"

// PromptAssembler turns a job snapshot, the conversation window (oldest
// first) and the new user message into a model prompt.
type PromptAssembler interface {
	Assemble(job model.JobContext, history []model.Turn, message string) (Prompt, error)
}
