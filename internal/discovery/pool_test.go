package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcat/internal/domain"
)

type stubParser struct {
	fail map[string]bool
}

func (p *stubParser) ParseFile(path string) ([]domain.Declaration, error) {
	if p.fail[path] {
		return nil, fmt.Errorf("%s:1: broken", path)
	}
	class := strings.TrimSuffix(path, ".py")
	return []domain.Declaration{
		{Kind: domain.MethodDeclaration, Method: domain.MethodRef{Class: class, Ident: "verify", File: path, Line: 2}},
		{Kind: domain.ClassDeclaration, Class: domain.ClassRef{Ident: class, File: path, Line: 1}},
	}, nil
}

type recordingProgress struct {
	mu       sync.Mutex
	updates  int
	parsed   int
	decls    int
	failed   int
	finished bool
}

func (p *recordingProgress) Update(parsed, declarations, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates++
	p.parsed, p.decls, p.failed = parsed, declarations, failed
}

func (p *recordingProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = true
}

func newStubPool(workers int, fail ...string) *WorkerPool {
	stub := &stubParser{fail: make(map[string]bool)}
	for _, f := range fail {
		stub.fail[f] = true
	}
	pool := NewWorkerPool(workers, nil)
	pool.python = stub
	pool.manifest = stub
	return pool
}

func TestWorkerPool_Parse_PreservesOrder(t *testing.T) {
	files := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		files = append(files, fmt.Sprintf("Suite%02d.py", i))
	}

	pool := newStubPool(4, "Suite07.py")
	progress := &recordingProgress{}
	pool.SetProgress(progress)

	results, _, err := pool.Parse(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, len(files))

	for i, result := range results {
		assert.Equal(t, files[i], result.Path)
		if result.Path == "Suite07.py" {
			assert.Error(t, result.Err)
			assert.Empty(t, result.Declarations)
			continue
		}
		require.NoError(t, result.Err)
		assert.Len(t, result.Declarations, 2)
	}

	assert.Equal(t, 20, progress.updates)
	assert.Equal(t, 20, progress.parsed)
	assert.Equal(t, 38, progress.decls)
	assert.Equal(t, 1, progress.failed)
	assert.True(t, progress.finished)
}

func TestWorkerPool_Parse_RepeatedPath(t *testing.T) {
	files := []string{"A.py", "B.py", "A.py"}

	results, _, err := newStubPool(3).Parse(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, files[i], result.Path)
		assert.Len(t, result.Declarations, 2)
	}
}

func TestWorkerPool_Parse_CustomScheduler(t *testing.T) {
	files := []string{"A.py", "B.py", "C.py"}
	var gotCount, gotWorkers int
	reversed := func(count, workers int) [][]int {
		gotCount, gotWorkers = count, workers
		return [][]int{{2, 1, 0}}
	}

	pool := newStubPool(8)
	pool.scheduler = reversed
	results, _, err := pool.Parse(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, 3, gotCount)
	assert.Equal(t, 3, gotWorkers)
	for i, result := range results {
		assert.Equal(t, files[i], result.Path)
	}
}

func TestRoundRobin(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		workers  int
		expected [][]int
	}{
		{name: "even", count: 4, workers: 2, expected: [][]int{{0, 2}, {1, 3}}},
		{name: "uneven", count: 5, workers: 2, expected: [][]int{{0, 2, 4}, {1, 3}}},
		{name: "more workers than files", count: 1, workers: 3, expected: [][]int{{0}, nil, nil}},
		{name: "zero workers", count: 2, workers: 0, expected: [][]int{{0, 1}}},
		{name: "nothing to do", count: 0, workers: 2, expected: [][]int{nil, nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RoundRobin(tt.count, tt.workers))
		})
	}
}

func TestWorkerPool_Parse_Empty(t *testing.T) {
	results, elapsed, err := newStubPool(2).Parse(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Zero(t, elapsed)
}

func TestWorkerPool_Parse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newStubPool(2).Parse(ctx, []string{"A.py", "B.py"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWorkerPool_ParserFor(t *testing.T) {
	pool := NewWorkerPool(1, nil)
	assert.IsType(t, &ManifestParser{}, pool.parserFor("net/network.suite.yaml"))
	assert.IsType(t, &ManifestParser{}, pool.parserFor("net/network.suite.yml"))
	assert.IsType(t, &Parser{}, pool.parserFor("cpu/cpusuite.py"))
}
