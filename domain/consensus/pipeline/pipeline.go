// Package pipeline drives the header, body and virtual processing stages from
// one submission channel served by one pool of workers; each worker takes a
// block through all three stages in turn. Shutdown sends one Exit sentinel
// per worker on that same channel; the stages have no channels or worker
// pools of their own.
package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/pipeline/bodyprocessor"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/pipeline/headerprocessor"
	"github.com/ghostdagnet/ghostnoded/domain/consensus/pipeline/virtualprocessor"
)

// BlockTask is the unit of work sent through the pipeline's channel: either
// a block to process, or the Exit sentinel telling the worker that receives
// it to stop.
type BlockTask struct {
	Exit         bool
	Header       *externalapi.DomainBlockHeader
	Transactions []*externalapi.DomainTransaction
}

// Pipeline runs the three processing stages on one pool of workers fed by a
// single channel: each worker drives a block through header -> body ->
// virtual, and the caller does not block on that round trip.
type Pipeline struct {
	headerStage  *headerprocessor.Processor
	bodyStage    *bodyprocessor.Processor
	virtualStage *virtualprocessor.Processor

	tasks chan BlockTask
	errMu sync.Mutex
	errs  map[externalapi.DomainHash]error

	// inFlight bounds how many blocks may be mid-pipeline at once, at
	// four times poolSize -- acquired in Submit and released once
	// runTask settles.
	inFlight *semaphore.Weighted

	workers  sync.WaitGroup
	poolSize int
}

// New constructs a Pipeline over the three already-wired stage processors,
// with poolSize concurrent workers pulling from the submission channel.
func New(
	headerStage *headerprocessor.Processor,
	bodyStage *bodyprocessor.Processor,
	virtualStage *virtualprocessor.Processor,
	poolSize int,
) *Pipeline {
	if poolSize < 1 {
		poolSize = 1
	}
	p := &Pipeline{
		headerStage:  headerStage,
		bodyStage:    bodyStage,
		virtualStage: virtualStage,
		tasks:        make(chan BlockTask, 256),
		errs:         make(map[externalapi.DomainHash]error),
		inFlight:     semaphore.NewWeighted(int64(poolSize) * 4),
		poolSize:     poolSize,
	}
	for i := 0; i < poolSize; i++ {
		p.workers.Add(1)
		go p.worker()
	}
	return p
}

// Submit blocks until a submission slot is free (bounding how many blocks
// may be mid-pipeline at once), then enqueues the block and returns; use
// Error to retrieve the outcome once the block has drained through every
// stage.
func (p *Pipeline) Submit(header *externalapi.DomainBlockHeader, transactions []*externalapi.DomainTransaction) {
	_ = p.inFlight.Acquire(context.Background(), 1)
	p.tasks <- BlockTask{Header: header, Transactions: transactions}
}

// Error returns the error the pipeline recorded for hash's body or virtual
// stage. It returns nil both once the block has settled successfully and
// while nothing has been recorded yet. A header-stage rejection is not
// recorded, since the header stage returns no hash with its errors.
func (p *Pipeline) Error(hash *externalapi.DomainHash) error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.errs[*hash]
}

// Shutdown sends the Exit sentinel to every worker and waits for them to
// drain their in-flight work before returning.
func (p *Pipeline) Shutdown() {
	for i := 0; i < p.poolSize; i++ {
		p.tasks <- BlockTask{Exit: true}
	}
	p.workers.Wait()
}

func (p *Pipeline) worker() {
	defer p.workers.Done()
	for task := range p.tasks {
		if task.Exit {
			return
		}
		p.runTask(task)
	}
}

// runTask drives one block through all three stages. The WaitForIdle calls
// between stages block until every currently in-flight header (or body) has
// settled, not just this task's own -- a simplification appropriate for this
// core's modest concurrency (poolSize workers), trading some parallelism for
// a pipeline driver simple enough to reason about without its own dependency
// bookkeeping on top of what dependencymanager already tracks per stage.
func (p *Pipeline) runTask(task BlockTask) {
	defer p.inFlight.Release(1)

	hash, err := p.headerStage.Submit(task.Header)
	if err != nil {
		if hash != nil {
			p.recordError(hash, err)
		}
		return
	}

	p.headerStage.WaitForIdle()

	if err := p.bodyStage.Submit(hash, task.Header, task.Transactions); err != nil {
		p.recordError(hash, err)
		return
	}

	p.bodyStage.WaitForIdle()

	if err := p.virtualStage.Submit(hash, task.Header.DirectParents()); err != nil {
		p.recordError(hash, err)
		return
	}

	p.recordError(hash, nil)
}

func (p *Pipeline) recordError(hash *externalapi.DomainHash, err error) {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	p.errs[*hash] = err
}
