package checkers

import (
	"context"
	"time"

	"github.com/jobassist/backend/pkg/jobstore"
)

// JobStoreChecker reports whether the external job store answers.
type JobStoreChecker struct {
	client *jobstore.Client
}

func NewJobStoreChecker(client *jobstore.Client) *JobStoreChecker {
	return &JobStoreChecker{client: client}
}

func (c *JobStoreChecker) Name() string { return "jobstore" }

func (c *JobStoreChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return c.client.Ping(ctx)
}
