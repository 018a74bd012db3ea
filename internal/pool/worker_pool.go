package pool

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// WorkerPool limita a quantidade de goroutines executando tarefas em segundo
// plano, como a gravação assíncrona da trilha de auditoria e as notificações
// de assinatura.
type WorkerPool struct {
	maxWorkers int
	taskQueue  chan func()
	log        *zap.Logger
	wg         sync.WaitGroup
}

// NewWorkerPool cria o pool com maxWorkers goroutines e fila de queueSize.
func NewWorkerPool(maxWorkers, queueSize int, log *zap.Logger) *WorkerPool {
	if log == nil {
		log = zap.NewNop()
	}
	return &WorkerPool{
		maxWorkers: maxWorkers,
		taskQueue:  make(chan func(), queueSize),
		log:        log,
	}
}

// Start inicia as goroutines do pool.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Submit enfileira uma tarefa; bloqueia se a fila estiver cheia.
func (p *WorkerPool) Submit(task func()) {
	p.taskQueue <- task
}

// TrySubmit enfileira uma tarefa; devolve false imediatamente se a fila
// estiver cheia.
func (p *WorkerPool) TrySubmit(task func()) bool {
	select {
	case p.taskQueue <- task:
		return true
	default:
		return false
	}
}

// Stop fecha a fila e aguarda as tarefas em andamento.
func (p *WorkerPool) Stop() {
	close(p.taskQueue)
	p.wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.taskQueue:
			if !ok {
				return
			}

			func() {
				defer func() {
					if r := recover(); r != nil {
						p.log.Error("tarefa em segundo plano entrou em pânico",
							zap.Any("panic", r),
						)
					}
				}()
				task()
			}()
		}
	}
}
