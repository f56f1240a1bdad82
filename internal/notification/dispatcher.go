package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// DispatchJob is one notification handed to the delivery pool.
type DispatchJob struct {
	NotificationID int64
	UserID         int64
	Type           string
	Title          string
	Message        string
}

type worker struct {
	id         int
	workerPool chan chan DispatchJob
	jobChannel chan DispatchJob
	logger     *slog.Logger
}

func newWorker(id int, workerPool chan chan DispatchJob, logger *slog.Logger) *worker {
	return &worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan DispatchJob),
		logger:     logger,
	}
}

func (w *worker) start(ctx context.Context, wg *sync.WaitGroup, processFunc func(DispatchJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("worker processing notification", "worker_id", w.id, "notification_id", job.NotificationID)
				processFunc(job)
			case <-ctx.Done():
				w.logger.Debug("worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

// Dispatcher pushes stored notifications to the external delivery API
// through a bounded worker pool. Delivery is best effort; the stored row is
// the source of truth either way.
type Dispatcher struct {
	apiURL          string
	apiKey          string
	dispatchTimeout time.Duration
	logger          *slog.Logger

	jobQueue   chan DispatchJob
	workerPool chan chan DispatchJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type DispatcherConfig struct {
	APIURL          string
	APIKey          string
	DispatchTimeout time.Duration
	MaxWorkers      int
	JobQueueSize    int
	WorkerPoolSize  int
}

func NewDispatcher(config DispatcherConfig, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	workerPoolSize := config.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	d := &Dispatcher{
		apiURL:          config.APIURL,
		apiKey:          config.APIKey,
		dispatchTimeout: config.DispatchTimeout,
		logger:          logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan DispatchJob, jobQueueSize),
		workerPool: make(chan chan DispatchJob, workerPoolSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	d.startWorkerPool()

	return d
}

func (d *Dispatcher) startWorkerPool() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			w := newWorker(i, d.workerPool, d.logger)
			w.start(d.ctx, &d.wg, d.deliver)
		}

		go d.dispatch()

		d.logger.Info("notification worker pool started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	d.wg.Add(1)
	defer d.wg.Done()

	for {
		select {
		case job := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- job:

				case <-d.ctx.Done():
					d.logger.Info("dispatcher shutting down")
					return
				}
			case <-d.ctx.Done():
				d.logger.Info("dispatcher shutting down")
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("dispatcher shutting down")
			return
		}
	}
}

func (d *Dispatcher) Shutdown() {
	d.logger.Info("shutting down notification dispatcher")
	d.cancel()
	d.wg.Wait()
	d.logger.Info("notification dispatcher shutdown complete")
}

// Dispatch queues a notification for delivery. A full queue drops the job
// rather than blocking the caller; the notification row already exists.
func (d *Dispatcher) Dispatch(n *Notification) error {
	job := DispatchJob{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
	}

	select {
	case d.jobQueue <- job:
		d.logger.Debug("notification queued for delivery",
			"notification_id", n.ID,
			"queue_length", len(d.jobQueue))
		return nil
	default:
		d.logger.Warn("notification queue full, dropping delivery",
			"notification_id", n.ID,
			"queue_capacity", cap(d.jobQueue))
		return fmt.Errorf("notification queue full")
	}
}

func (d *Dispatcher) deliver(job DispatchJob) {
	if d.apiURL == "" {
		d.logger.Debug("no delivery API configured, skipping", "notification_id", job.NotificationID)
		return
	}

	payload := map[string]interface{}{
		"notification_id": job.NotificationID,
		"user_id":         job.UserID,
		"type":            job.Type,
		"title":           job.Title,
		"message":         job.Message,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("failed to marshal notification payload", "error", err, "notification_id", job.NotificationID)
		return
	}

	ctx, cancel := context.WithTimeout(d.ctx, d.dispatchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", d.apiURL+"/notifications", bytes.NewBuffer(jsonData))
	if err != nil {
		d.logger.Error("failed to create delivery request", "error", err, "notification_id", job.NotificationID)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	client := &http.Client{Timeout: d.dispatchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		d.logger.Error("notification delivery failed", "error", err, "notification_id", job.NotificationID)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		d.logger.Info("notification delivered",
			"notification_id", job.NotificationID,
			"status_code", resp.StatusCode)
	} else {
		d.logger.Warn("notification delivery returned error",
			"notification_id", job.NotificationID,
			"status_code", resp.StatusCode)
	}
}
