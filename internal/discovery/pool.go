package discovery

import (
	"context"
	"sync"
	"time"

	"tcat/internal/domain"
)

// FileParser turns one source file into declarations
type FileParser interface {
	ParseFile(path string) ([]domain.Declaration, error)
}

// Progress receives parse progress from the worker pool
type Progress interface {
	Update(parsed, declarations, failed int)
	Finish()
}

// FileResult is the outcome of parsing a single source file
type FileResult struct {
	Path         string
	Declarations []domain.Declaration
	Err          error
}

// Scheduler splits the indexes 0..count-1 into one batch per worker
type Scheduler func(count, workers int) [][]int

// RoundRobin deals indexes to the workers in turn. A non-positive worker
// count is treated as one.
func RoundRobin(count, workers int) [][]int {
	if workers <= 0 {
		workers = 1
	}
	batches := make([][]int, workers)
	for i := 0; i < count; i++ {
		batches[i%workers] = append(batches[i%workers], i)
	}
	return batches
}

// WorkerPool parses source files in parallel
type WorkerPool struct {
	workers   int
	scheduler Scheduler
	progress  Progress
	python    FileParser
	manifest  FileParser
}

// NewWorkerPool creates a new WorkerPool. A nil scheduler means RoundRobin.
func NewWorkerPool(workers int, scheduler Scheduler) *WorkerPool {
	if scheduler == nil {
		scheduler = RoundRobin
	}
	return &WorkerPool{
		workers:   workers,
		scheduler: scheduler,
		python:    NewParser(),
		manifest:  NewManifestParser(),
	}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

func (wp *WorkerPool) parserFor(path string) FileParser {
	if IsManifest(path) {
		return wp.manifest
	}
	return wp.python
}

// Parse parses files and returns one result per file, in the order given.
// A file that fails to parse is reported in its FileResult; the returned
// error is only set when ctx is cancelled.
func (wp *WorkerPool) Parse(ctx context.Context, files []string) ([]FileResult, time.Duration, error) {
	if len(files) == 0 {
		return nil, 0, nil
	}

	results := make([]FileResult, len(files))

	workerCount := wp.workers
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(files) {
		workerCount = len(files)
	}

	var mu sync.Mutex
	var parsedFiles, declarations, failedFiles int
	startTime := time.Now()

	var wg sync.WaitGroup
	for _, batch := range wp.scheduler(len(files), workerCount) {
		wg.Add(1)
		go func(batch []int) {
			defer wg.Done()
			for _, i := range batch {
				if ctx.Err() != nil {
					return
				}
				path := files[i]
				decls, err := wp.parserFor(path).ParseFile(path)
				results[i] = FileResult{Path: path, Declarations: decls, Err: err}

				mu.Lock()
				parsedFiles++
				declarations += len(decls)
				if err != nil {
					failedFiles++
				}
				if wp.progress != nil {
					wp.progress.Update(parsedFiles, declarations, failedFiles)
				}
				mu.Unlock()
			}
		}(batch)
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}
	if err := ctx.Err(); err != nil {
		return nil, time.Since(startTime), err
	}
	return results, time.Since(startTime), nil
}
