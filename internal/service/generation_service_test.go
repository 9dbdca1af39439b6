package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobforge/jobforge-api/internal/domain"
	"github.com/jobforge/jobforge-api/internal/generation"
)

func newGenerationService(
	t *testing.T,
	generator *stubGenerator,
	submitter *captureSubmitter,
	history *inMemoryHistoryStore,
) GenerationService {
	t.Helper()
	svc, err := NewGenerationService(generator, submitter, history,
		SubmitDefaults{Mode: ModeSync, SaveToHistory: true}, nil)
	require.NoError(t, err)
	return svc
}

func TestGenerationService_SyncReturnsTerminalResult(t *testing.T) {
	t.Parallel()

	result := json.RawMessage(`{"cover_letter":"Dear team"}`)
	generator := &stubGenerator{result: result}
	history := newInMemoryHistoryStore()
	svc := newGenerationService(t, generator, &captureSubmitter{}, history)

	userID := uuid.New()
	got, err := svc.Submit(context.Background(), userID, SubmitRequest{
		Kind:   domain.KindCoverLetter,
		Params: json.RawMessage(validCoverLetterParams),
	})
	require.NoError(t, err)
	assert.Equal(t, ModeSync, got.Mode)
	assert.JSONEq(t, string(result), string(got.Result))
	assert.Nil(t, got.Task)

	// The default submission retains the result in history.
	page, err := history.List(context.Background(), userID, storeFilters())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.JSONEq(t, string(result), string(page.Items[0].Payload))
}

func TestGenerationService_SyncOptOutSkipsHistory(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{result: json.RawMessage(`{"cover_letter":"Hi"}`)}
	history := newInMemoryHistoryStore()
	svc := newGenerationService(t, generator, &captureSubmitter{}, history)

	userID := uuid.New()
	optOut := false
	_, err := svc.Submit(context.Background(), userID, SubmitRequest{
		Kind:          domain.KindCoverLetter,
		Params:        json.RawMessage(validCoverLetterParams),
		SaveToHistory: &optOut,
	})
	require.NoError(t, err)

	page, err := history.List(context.Background(), userID, storeFilters())
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestGenerationService_SyncGenerationFailure(t *testing.T) {
	t.Parallel()

	genErr := errors.New("model unavailable")
	generator := &stubGenerator{err: genErr}
	history := newInMemoryHistoryStore()
	svc := newGenerationService(t, generator, &captureSubmitter{}, history)

	userID := uuid.New()
	_, err := svc.Submit(context.Background(), userID, SubmitRequest{
		Kind:   domain.KindCoverLetter,
		Params: json.RawMessage(validCoverLetterParams),
	})
	assert.ErrorIs(t, err, genErr)
	assert.NotErrorIs(t, err, ErrSubmissionFailed, "generation failure is not a submission failure")

	page, listErr := history.List(context.Background(), userID, storeFilters())
	require.NoError(t, listErr)
	assert.Empty(t, page.Items, "no history for failed generations")
}

func TestGenerationService_AsyncReturnsPendingTask(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{result: json.RawMessage(`{}`)}
	submitter := &captureSubmitter{}
	svc := newGenerationService(t, generator, submitter, newInMemoryHistoryStore())

	userID := uuid.New()
	got, err := svc.Submit(context.Background(), userID, SubmitRequest{
		Kind:   domain.KindCoverLetter,
		Params: json.RawMessage(validCoverLetterParams),
		Mode:   ModeAsync,
	})
	require.NoError(t, err)
	assert.Equal(t, ModeAsync, got.Mode)
	require.NotNil(t, got.Task)
	assert.Equal(t, domain.TaskStatusPending, got.Task.Status)
	assert.Equal(t, userID, got.Task.UserID)
	assert.True(t, got.Task.SaveToHistory, "configured default applies")

	require.Len(t, submitter.submitted, 1)
	assert.Equal(t, got.Task.ID, submitter.submitted[0].ID)
	assert.Equal(t, 0, generator.calls, "async submission never touches the generator inline")
}

func TestGenerationService_AsyncSubmitFailure(t *testing.T) {
	t.Parallel()

	submitter := &captureSubmitter{err: errors.New("queue full")}
	svc := newGenerationService(t, &stubGenerator{}, submitter, newInMemoryHistoryStore())

	_, err := svc.Submit(context.Background(), uuid.New(), SubmitRequest{
		Kind:   domain.KindCoverLetter,
		Params: json.RawMessage(validCoverLetterParams),
		Mode:   ModeAsync,
	})
	assert.ErrorIs(t, err, ErrSubmissionFailed)
}

func TestGenerationService_RejectsInvalidKind(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{}
	svc := newGenerationService(t, generator, &captureSubmitter{}, newInMemoryHistoryStore())

	_, err := svc.Submit(context.Background(), uuid.New(), SubmitRequest{
		Kind:   domain.GenerationKind("haiku"),
		Params: json.RawMessage(`{}`),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidGenerationKind)
	assert.Equal(t, 0, generator.calls)
}

func TestGenerationService_RejectsInvalidParams(t *testing.T) {
	t.Parallel()

	generator := &stubGenerator{}
	svc := newGenerationService(t, generator, &captureSubmitter{}, newInMemoryHistoryStore())

	_, err := svc.Submit(context.Background(), uuid.New(), SubmitRequest{
		Kind:   domain.KindCoverLetter,
		Params: json.RawMessage(`{"job_description":"short","resume_text":"short"}`),
	})
	assert.ErrorIs(t, err, generation.ErrInvalidParams)
	assert.Equal(t, 0, generator.calls, "invalid params never reach the generator")
}

func TestGenerationService_RejectsUnknownMode(t *testing.T) {
	t.Parallel()

	svc := newGenerationService(t, &stubGenerator{}, &captureSubmitter{}, newInMemoryHistoryStore())

	_, err := svc.Submit(context.Background(), uuid.New(), SubmitRequest{
		Kind:   domain.KindCoverLetter,
		Params: json.RawMessage(validCoverLetterParams),
		Mode:   Mode("batch"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
