package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-highlighter/internal/models"
	"podcast-highlighter/internal/test"
	"podcast-highlighter/pkg/tasks"
)

func mockYtDlp(t *testing.T) *[]string {
	t.Helper()
	original := execCommandContext
	t.Cleanup(func() { execCommandContext = original })

	var calls []string
	execCommandContext = func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		calls = append(calls, strings.Join(arg, " "))
		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, arg...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", "YT_DLP_ARGS=" + strings.Join(arg, " ")}
		return cmd
	}
	return &calls
}

func processTask(t *testing.T, episodeID string) *asynq.Task {
	t.Helper()
	return asynq.NewTask(tasks.TypeProcessEpisode, mustMarshal(t, tasks.ProcessEpisodeTaskPayload{EpisodeID: episodeID}))
}

func TestHandleProcessEpisodeTask(t *testing.T) {
	env := test.NewEnv(t, 100)
	calls := mockYtDlp(t)
	ctx := context.Background()

	ep, err := env.Store.CreateEpisode(ctx, models.Episode{YoutubeURL: "https://youtu.be/video1", Title: "Processing..."})
	require.NoError(t, err)

	handler := NewTaskHandler(env.Store, nil, "yt-dlp", time.Hour)
	require.NoError(t, handler.HandleProcessEpisodeTask(ctx, processTask(t, ep.ID)))

	require.Len(t, *calls, 1)
	assert.Equal(t, "--skip-download --dump-json --no-warnings https://youtu.be/video1", (*calls)[0])

	got, err := env.Store.GetEpisode(ctx, ep.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EpisodeStatusCompleted, got.Status)
	assert.Equal(t, "Test Title", got.Title)
	assert.Equal(t, 123, got.DurationSeconds)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Test Description", *got.Description)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, got.PublishedAt.Equal(time.Date(2023, 9, 15, 0, 0, 0, 0, time.UTC)))

	// Redelivery of a completed episode does not run yt-dlp again.
	require.NoError(t, handler.HandleProcessEpisodeTask(ctx, processTask(t, ep.ID)))
	assert.Len(t, *calls, 1)
}

func TestHandleProcessEpisodeTaskMarksFailure(t *testing.T) {
	env := test.NewEnv(t, 100)
	mockYtDlp(t)
	ctx := context.Background()

	ep, err := env.Store.CreateEpisode(ctx, models.Episode{YoutubeURL: "https://youtu.be/broken", Title: "Processing..."})
	require.NoError(t, err)

	err = NewTaskHandler(env.Store, nil, "", time.Hour).HandleProcessEpisodeTask(ctx, processTask(t, ep.ID))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))

	got, err := env.Store.GetEpisode(ctx, ep.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EpisodeStatusFailed, got.Status)
	assert.Equal(t, "Processing...", got.Title)
}

func TestHandleProcessEpisodeTaskSkipsBadPayloads(t *testing.T) {
	env := test.NewEnv(t, 100)
	handler := NewTaskHandler(env.Store, nil, "", time.Hour)
	ctx := context.Background()

	err := handler.HandleProcessEpisodeTask(ctx, asynq.NewTask(tasks.TypeProcessEpisode, []byte("{not json")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = handler.HandleProcessEpisodeTask(ctx, processTask(t, ""))
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = handler.HandleProcessEpisodeTask(ctx, processTask(t, "gone"))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleSweepPendingEpisodesTask(t *testing.T) {
	env := test.NewEnv(t, 100)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	createAt := func(url, status string, at time.Time) models.Episode {
		env.Store.WithClock(func() time.Time { return at })
		ep, err := env.Store.CreateEpisode(ctx, models.Episode{YoutubeURL: url, Title: "t", Status: status})
		require.NoError(t, err)
		return ep
	}
	stale := createAt("https://youtu.be/a", models.EpisodeStatusPending, now.Add(-2*time.Hour))
	createAt("https://youtu.be/b", models.EpisodeStatusPending, now.Add(-10*time.Minute))
	createAt("https://youtu.be/c", models.EpisodeStatusCompleted, now.Add(-2*time.Hour))

	enq := &test.MockTaskEnqueuer{}
	handler := NewTaskHandler(env.Store, enq, "", 30*time.Minute)
	handler.now = func() time.Time { return now }

	task, err := tasks.NewSweepPendingEpisodesTask()
	require.NoError(t, err)
	require.NoError(t, handler.HandleSweepPendingEpisodesTask(ctx, task))

	require.Len(t, enq.EnqueuedTasks, 1)
	var p tasks.ProcessEpisodeTaskPayload
	require.NoError(t, json.Unmarshal(enq.EnqueuedTasks[0].Payload(), &p))
	assert.Equal(t, stale.ID, p.EpisodeID)
}

// TestHelperProcess isn't a real test. It stands in for yt-dlp when
// execCommandContext is mocked.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Getenv("YT_DLP_ARGS")

	if strings.Contains(args, "broken") {
		fmt.Fprintln(os.Stderr, "ERROR: Video unavailable")
		os.Exit(1)
	}

	if strings.Contains(args, "--dump-json") {
		output := VideoMetadata{
			ID:          "video1",
			Title:       "Test Title",
			Description: "Test Description",
			Duration:    123.45,
			UploadDate:  "20230915",
		}
		jsonOutput, _ := json.Marshal(output)
		fmt.Println("[youtube] video1: Downloading webpage")
		fmt.Println(string(jsonOutput))
		os.Exit(0)
	}

	os.Exit(1)
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return b
}
