// Package orchestrator implements the task state machine shared by every
// agent: submit a document in sync/async/stream mode, run the agent's
// pipeline, track progress, and persist the resulting artifacts.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/buildsense-ai/review-app-sub000/internal/agent"
	"github.com/buildsense-ai/review-app-sub000/internal/flatview"
	"github.com/buildsense-ai/review-app-sub000/internal/future"
	"github.com/buildsense-ai/review-app-sub000/internal/model"
	"github.com/buildsense-ai/review-app-sub000/internal/pipelineerr"
	"github.com/buildsense-ai/review-app-sub000/internal/rebuilder"
	"github.com/buildsense-ai/review-app-sub000/internal/section"
	"github.com/buildsense-ai/review-app-sub000/internal/unified"
)

const (
	maxSyncDocumentBytes  = 100 * 1024
	maxAsyncDocumentBytes = 1024 * 1024
)

// StreamEvent mirrors the orchestrator's event-stream contract; the HTTP
// transport encodes it into SSE wire format.
type StreamEvent struct {
	Event string
	Data  any
}

// Orchestrator drives one agent's pipeline through the task state machine.
type Orchestrator struct {
	pipelines   map[string]Pipeline
	store       *store
	pool        future.Pool
	outputDir   string
	taskTimeout time.Duration
	logger      *slog.Logger
}

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithPool overrides the default goroutine pool used for async task execution.
func WithPool(pool future.Pool) Option {
	return func(o *Orchestrator) { o.pool = pool }
}

// WithTaskTimeout overrides the default 10-minute per-task wall-clock timeout.
func WithTaskTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.taskTimeout = d }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New constructs an Orchestrator with one Pipeline per agent name
// ("redundancy", "table", "thesis", "evidence").
func New(pipelines map[string]Pipeline, outputDir string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		pipelines:   pipelines,
		store:       newStore(),
		pool:        future.DefaultPool(),
		outputDir:   outputDir,
		taskTimeout: 10 * time.Minute,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) validate(markdown string, limit int) error {
	if strings.TrimSpace(markdown) == "" {
		return &pipelineerr.TaskFatalError{KindVal: pipelineerr.KindInvalidInput, Err: fmt.Errorf("文档内容不能为空")}
	}
	if len(markdown) > limit {
		return &pipelineerr.TaskFatalError{KindVal: pipelineerr.KindInvalidInput, Err: fmt.Errorf("document exceeds maximum size of %d bytes", limit)}
	}
	return nil
}

// SubmitSync runs agentName's pipeline to completion and returns the full
// result, never creating a task for a validation failure.
func (o *Orchestrator) SubmitSync(ctx context.Context, agentName, title, markdown string) (*model.TaskResult, error) {
	if err := o.validate(markdown, maxSyncDocumentBytes); err != nil {
		return nil, err
	}
	t := newTask(agentName)
	o.store.put(t)
	o.run(ctx, t, markdown, title)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == model.TaskFailed {
		return nil, fmt.Errorf("%s: %s", t.taskErr.Kind, t.taskErr.Message)
	}
	return t.result, nil
}

// SubmitAsync validates the request, creates a pending task, schedules its
// execution on the worker pool, and returns its task_id immediately.
func (o *Orchestrator) SubmitAsync(agentName, title, markdown string) (string, error) {
	if err := o.validate(markdown, maxAsyncDocumentBytes); err != nil {
		return "", err
	}
	t := newTask(agentName)
	o.store.put(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()

	future.NewFutureAndRunWithPool(func(interrupt <-chan struct{}) (struct{}, error) {
		o.run(ctx, t, markdown, title)
		return struct{}{}, nil
	}, o.pool)
	return t.id, nil
}

// Stream runs agentName's pipeline synchronously, invoking emit for every
// progress/result/end/error event per the stream delivery contract.
func (o *Orchestrator) Stream(ctx context.Context, agentName, title, markdown string, emit func(StreamEvent)) {
	if err := o.validate(markdown, maxAsyncDocumentBytes); err != nil {
		emit(StreamEvent{Event: "error", Data: map[string]any{"error": pipelineerr.KindOf(err), "message": err.Error()}})
		emit(StreamEvent{Event: "end", Data: map[string]any{"status": model.TaskFailed, "progress": 0}})
		return
	}

	t := newTask(agentName)
	o.store.put(t)

	var lastProgress int
	report := func(progress int, message string) {
		if progress < lastProgress {
			progress = lastProgress
		}
		lastProgress = progress
		emit(StreamEvent{Event: "progress", Data: map[string]any{
			"status": model.TaskProcessing, "message": message, "progress": progress,
		}})
	}

	o.runWithReporter(ctx, t, markdown, title, report)

	t.mu.Lock()
	status := t.status
	taskErr := t.taskErr
	unifiedSections := t.unified
	t.mu.Unlock()

	if status == model.TaskFailed {
		emit(StreamEvent{Event: "error", Data: map[string]any{"error": taskErr.Kind, "message": taskErr.Message}})
		emit(StreamEvent{Event: "end", Data: map[string]any{"status": status, "progress": lastProgress}})
		return
	}

	chapters := flatview.Build(unifiedSections)
	emit(StreamEvent{Event: "result", Data: map[string]any{"chapters": chapters, "summary": summarize(chapters)}})
	emit(StreamEvent{Event: "end", Data: map[string]any{"status": status, "progress": 100}})
}

// GetStatus returns the task's current snapshot.
func (o *Orchestrator) GetStatus(taskID string) (Snapshot, bool) {
	t, ok := o.store.get(taskID)
	if !ok {
		return Snapshot{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked(), true
}

// GetUnified returns the task's UnifiedSections, if the task has completed.
func (o *Orchestrator) GetUnified(taskID string) (*model.UnifiedSections, bool) {
	t, ok := o.store.get(taskID)
	if !ok {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unified == nil {
		return nil, false
	}
	return t.unified, true
}

// GetFlat returns the task's flat chapter view.
func (o *Orchestrator) GetFlat(taskID string) ([]model.Chapter, bool) {
	unified, ok := o.GetUnified(taskID)
	if !ok {
		return nil, false
	}
	return flatview.Build(unified), true
}

// GetRebuilt returns the task's rebuilt Markdown document.
func (o *Orchestrator) GetRebuilt(taskID string) (string, bool) {
	t, ok := o.store.get(taskID)
	if !ok {
		return "", false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unified == nil {
		return "", false
	}
	return rebuilder.Rebuild(t.original, t.unified), true
}

// Cancel requests cooperative cancellation of a processing task. Returns
// false if the task is unknown or already terminal.
func (o *Orchestrator) Cancel(taskID string) bool {
	t, ok := o.store.get(taskID)
	if !ok {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != model.TaskProcessing && t.status != model.TaskPending {
		return false
	}
	if t.cancel != nil {
		t.cancel()
	}
	return true
}

// Cleanup sweeps terminal tasks older than olderThan, returning the count removed.
func (o *Orchestrator) Cleanup(olderThan time.Duration) int {
	return o.store.sweep(time.Now().Add(-olderThan))
}

func summarize(chapters []model.Chapter) string {
	return fmt.Sprintf("%d section(s) modified", len(chapters))
}

func (o *Orchestrator) run(ctx context.Context, t *task, markdown, title string) {
	o.runWithReporter(ctx, t, markdown, title, func(progress int, message string) {
		t.mu.Lock()
		if progress > t.progress {
			t.progress = progress
		}
		t.message = message
		t.mu.Unlock()
	})
}

func (o *Orchestrator) runWithReporter(ctx context.Context, t *task, markdown, title string, report func(int, string)) {
	logger := o.logger.With("task_id", t.id, "agent", t.agent)

	t.mu.Lock()
	t.status = model.TaskProcessing
	started := time.Now()
	t.startedAt = &started
	t.original = markdown
	t.mu.Unlock()
	report(0, "submitted")

	ctx, cancel := context.WithTimeout(ctx, o.taskTimeout)
	defer cancel()

	pipeline, ok := o.pipelines[t.agent]
	if !ok {
		o.fail(t, &pipelineerr.TaskFatalError{KindVal: pipelineerr.KindInvalidInput, Err: fmt.Errorf("unknown agent %q", t.agent)})
		return
	}

	sections := section.Parse(markdown, section.MaxLevelH3, true, logger)

	var results []agent.ModifyResult
	var note string
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var runErr error
		results, note, runErr = pipeline.Run(groupCtx, title, sections, report)
		return runErr
	})
	runErr := group.Wait()

	// A cancellation during modification can be absorbed into per-section
	// failed records instead of surfacing as runErr, so this check must not
	// be gated on runErr != nil: an absorbed cancellation must still abort
	// the task rather than persist a partial result as completed.
	if ctx.Err() != nil {
		logger.Error("task aborted", "reason", ctx.Err())
		kind := pipelineerr.KindTimeout
		if ctx.Err() == context.Canceled {
			kind = pipelineerr.KindCancelled
		}
		o.fail(t, &pipelineerr.TaskFatalError{KindVal: kind, Err: ctx.Err()})
		return
	}

	if runErr != nil {
		logger.Error("pipeline run failed", "error", runErr)
		o.fail(t, runErr)
		return
	}

	builder := unified.NewBuilder(sections)
	builder.Add(results)
	unifiedSections := builder.Build()

	report(95, "finalizing")

	artifactPath, writeErr := o.persist(t.id, unifiedSections)
	if writeErr != nil {
		o.fail(t, &pipelineerr.DocumentProcessingError{Stage: "artifact_write", Err: writeErr})
		return
	}

	t.mu.Lock()
	t.unified = unifiedSections
	t.status = model.TaskCompleted
	completed := time.Now()
	t.completedAt = &completed
	msg := "completed"
	if note != "" {
		msg = note
	}
	t.message = msg
	t.result = &model.TaskResult{
		Chapters:    flatview.Build(unifiedSections),
		Summary:     summarize(flatview.Build(unifiedSections)),
		UnifiedPath: artifactPath,
	}
	t.progress = 100
	t.mu.Unlock()
	report(100, msg)
	logger.Info("task completed")
}

func (o *Orchestrator) fail(t *task, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = model.TaskFailed
	completed := time.Now()
	t.completedAt = &completed
	t.taskErr = &model.TaskError{Kind: string(pipelineerr.KindOf(err)), Message: err.Error()}
}

func (o *Orchestrator) persist(taskID string, sections *model.UnifiedSections) (string, error) {
	if o.outputDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(o.outputDir, 0o755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(sections, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(o.outputDir, fmt.Sprintf("%s_%d.json", taskID, time.Now().UnixNano()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
