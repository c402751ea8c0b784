package services

import (
	"context"
	"testing"

	"catalog-service/models"
	awspkg "catalog-service/pkg/aws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memJobs struct {
	jobs  map[string]models.ImportJob
	saves []models.JobStatus
}

func (m *memJobs) Get(_ context.Context, id string) (*models.ImportJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return &job, nil
}

func (m *memJobs) Save(_ context.Context, job *models.ImportJob) error {
	m.jobs[job.ID] = *job
	m.saves = append(m.saves, job.Status)
	return nil
}

func TestProcessImportJob_Success(t *testing.T) {
	svc, _, store := newTestService()
	key := store.stage("name,description,price,category\nA,d,1,C\n")
	jobs := &memJobs{jobs: map[string]models.ImportJob{
		"job-1": {ID: "job-1", Status: models.JobPending, UploadKey: key},
	}}

	var hooked *models.BulkImportResult
	processImportJob(context.Background(), jobs, svc, "job-1", func(_ context.Context, r *models.BulkImportResult) {
		hooked = r
	})

	job := jobs.jobs["job-1"]
	assert.Equal(t, []models.JobStatus{models.JobProcessing, models.JobDone}, jobs.saves)
	require.NotNil(t, job.Result)
	assert.Equal(t, 1, job.Result.InsertedCount)
	assert.Empty(t, job.Error)
	assert.Equal(t, []string{key}, store.removed)
	assert.Same(t, job.Result, hooked)
}

func TestProcessImportJob_ParseFailure(t *testing.T) {
	svc, _, store := newTestService()
	key := store.stage("name,description\n\"oops\n")
	jobs := &memJobs{jobs: map[string]models.ImportJob{
		"job-2": {ID: "job-2", Status: models.JobPending, UploadKey: key},
	}}

	processImportJob(context.Background(), jobs, svc, "job-2", func(context.Context, *models.BulkImportResult) {
		t.Fatal("hook must not run for failed jobs")
	})

	job := jobs.jobs["job-2"]
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Contains(t, job.Error, "invalid CSV")
	assert.Nil(t, job.Result)
	assert.Equal(t, []string{key}, store.removed)
}

func TestProcessImportJob_UnknownJob(t *testing.T) {
	svc, _, _ := newTestService()
	jobs := &memJobs{jobs: map[string]models.ImportJob{}}

	processImportJob(context.Background(), jobs, svc, "missing", nil)
	assert.Empty(t, jobs.saves)
}

type fakeSQS struct {
	sent    []string
	pending []string
	acked   []error
}

func (f *fakeSQS) Send(_ context.Context, body string) error {
	f.sent = append(f.sent, body)
	return nil
}

func (f *fakeSQS) Poll(ctx context.Context, handler awspkg.MessageHandler) error {
	for _, body := range f.pending {
		f.acked = append(f.acked, handler(ctx, body))
	}
	return context.Canceled
}

func TestSQSDispatcher(t *testing.T) {
	q := &fakeSQS{pending: []string{"job-a", "job-b"}}
	d := NewSQSDispatcher(q)

	require.NoError(t, d.Push(context.Background(), "job-1"))
	assert.Equal(t, []string{"job-1"}, q.sent)

	var handled []string
	err := d.Consume(context.Background(), func(_ context.Context, id string) {
		handled = append(handled, id)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"job-a", "job-b"}, handled)
	assert.Equal(t, []error{nil, nil}, q.acked)
}
