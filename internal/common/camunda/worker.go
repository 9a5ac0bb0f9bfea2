// internal/common/camunda/worker.go
package camunda

import (
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"grant-workers/internal/common/config"
	"grant-workers/internal/common/logger"
)

// WorkerPool tracks the job workers opened by the manager so they can be
// drained on shutdown.
type WorkerPool struct {
	client  zbc.Client
	logger  logger.Logger
	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkerPool(client zbc.Client, log logger.Logger) *WorkerPool {
	return &WorkerPool{
		client:  client,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for taskType unless it is disabled.
func (p *WorkerPool) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) {
	if !wcfg.Enabled {
		p.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return
	}

	jobWorker := p.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Name(taskType).
		Open()

	p.mu.Lock()
	p.workers[taskType] = jobWorker
	p.mu.Unlock()

	p.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
}

func (p *WorkerPool) Running() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.workers))
	for name := range p.workers {
		names = append(names, name)
	}
	return names
}

// Close stops polling and waits for in-flight jobs of every worker.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	workers := p.workers
	p.workers = make(map[string]worker.JobWorker)
	p.mu.Unlock()

	var wg sync.WaitGroup
	for name, w := range workers {
		wg.Add(1)
		go func(name string, w worker.JobWorker) {
			defer wg.Done()
			w.Close()
			w.AwaitClose()
			p.logger.Info("worker stopped", map[string]interface{}{"taskType": name})
		}(name, w)
	}
	wg.Wait()
}
