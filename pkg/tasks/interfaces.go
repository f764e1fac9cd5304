package tasks

import "github.com/hibiken/asynq"

// TaskEnqueuer is the part of *asynq.Client the API and the sweep handler use.
// Tests substitute test.MockTaskEnqueuer.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
