package search

import "context"

// ReindexJob rebuilds the feedback index on a cron schedule.
type ReindexJob struct {
	service  SearchService
	schedule string
}

func NewReindexJob(service SearchService, schedule string) *ReindexJob {
	return &ReindexJob{service: service, schedule: schedule}
}

func (j *ReindexJob) Name() string { return "search-reindex" }

func (j *ReindexJob) Schedule() string { return j.schedule }

func (j *ReindexJob) Run(ctx context.Context) error {
	_, err := j.service.Reindex(ctx)
	return err
}
