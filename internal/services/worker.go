package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"careercoach/api/internal/repositories"
)

const duePollBatch = 10

// Worker refreshes industry insights whose next update is due. It is an
// in-process alternative to an external scheduler calling the refresh
// endpoint.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueIndustry(industry string)
}

type worker struct {
	insightRepo    repositories.IndustryInsightRepository
	insightService InsightService
	jobQueue       chan string
	concurrency    int
	pollInterval   time.Duration
	logger         *zap.Logger
	wg             sync.WaitGroup
	stopChan       chan struct{}
	stopOnce       sync.Once

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewWorker(
	insightRepo repositories.IndustryInsightRepository,
	insightService InsightService,
	concurrency int,
	pollInterval time.Duration,
	logger *zap.Logger,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &worker{
		insightRepo:    insightRepo,
		insightService: insightService,
		jobQueue:       make(chan string, 100),
		concurrency:    concurrency,
		pollInterval:   pollInterval,
		logger:         logger.Named("refresh_worker"),
		stopChan:       make(chan struct{}),
		pending:        make(map[string]struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting refresh worker", zap.Int("concurrency", w.concurrency), zap.Duration("poll_interval", w.pollInterval))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollDueInsights(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("stopping refresh worker")
		close(w.stopChan)
		w.wg.Wait()
	})
}

// EnqueueIndustry implements Worker. An industry already queued or being
// refreshed is not queued twice.
func (w *worker) EnqueueIndustry(industry string) {
	w.mu.Lock()
	if _, ok := w.pending[industry]; ok {
		w.mu.Unlock()
		return
	}
	w.pending[industry] = struct{}{}
	w.mu.Unlock()

	select {
	case w.jobQueue <- industry:
		w.logger.Debug("industry enqueued", zap.String("industry", industry))
	case <-w.stopChan:
		w.done(industry)
	}
}

func (w *worker) done(industry string) {
	w.mu.Lock()
	delete(w.pending, industry)
	w.mu.Unlock()
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case industry := <-w.jobQueue:
			refreshed, err := w.insightService.RefreshIndustry(ctx, industry)
			switch {
			case err != nil:
				w.logger.Error("refresh failed", zap.Int("worker", workerID), zap.String("industry", industry), zap.Error(err))
			case !refreshed:
				w.logger.Warn("refresh kept existing insight", zap.Int("worker", workerID), zap.String("industry", industry))
			default:
				w.logger.Info("refresh completed", zap.Int("worker", workerID), zap.String("industry", industry))
			}
			w.done(industry)
		}
	}
}

func (w *worker) pollDueInsights(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			due, err := w.insightRepo.FindDue(ctx, time.Now(), duePollBatch)
			if err != nil {
				w.logger.Warn("failed to fetch due insights", zap.Error(err))
				continue
			}

			for _, insight := range due {
				w.EnqueueIndustry(insight.Industry)
			}
		}
	}
}
