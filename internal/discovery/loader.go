package discovery

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"tcat/internal/catalog"
	"tcat/internal/domain"
	"tcat/internal/logging"
)

// Loader builds a sealed catalog from a source tree
type Loader struct {
	scanner     *Scanner
	pool        *WorkerPool
	filter      *Filter
	filePattern string
	options     []catalog.Option
	newProgress func(files int) Progress
	log         zerolog.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithFilePattern restricts loading to files whose base name matches pattern
func WithFilePattern(pattern string) LoaderOption {
	return func(l *Loader) { l.filePattern = pattern }
}

// WithProgress reports parse progress to the Progress returned by newProgress,
// which is called once the number of files is known
func WithProgress(newProgress func(files int) Progress) LoaderOption {
	return func(l *Loader) { l.newProgress = newProgress }
}

// WithRegistryOptions passes options to the registry built by Load
func WithRegistryOptions(opts ...catalog.Option) LoaderOption {
	return func(l *Loader) { l.options = append(l.options, opts...) }
}

// NewLoader creates a Loader that scans with scanner and parses with pool
func NewLoader(scanner *Scanner, pool *WorkerPool, opts ...LoaderOption) *Loader {
	l := &Loader{
		scanner: scanner,
		pool:    pool,
		filter:  NewFilter(),
		log:     logging.GetLogger("discovery"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load scans root, parses every suite source and replays the declarations
// into a new registry, file by file in scan order. The registry is sealed
// before it is returned. The first parse or registration error aborts
// loading and is returned wrapped with its source location.
func (l *Loader) Load(ctx context.Context, root string) (*catalog.Registry, error) {
	done := logging.LogOperationStart(l.log, "load catalog")
	defer done()

	files, err := l.scanner.Scan(root)
	if err != nil {
		return nil, err
	}
	files = l.filter.FilterByName(files, l.filePattern)
	l.log.Debug().Str("root", root).Int("files", len(files)).Msg("scanned suite sources")
	if l.newProgress != nil && len(files) > 0 {
		l.pool.SetProgress(l.newProgress(len(files)))
	}

	results, elapsed, err := l.pool.Parse(ctx, files)
	if err != nil {
		return nil, err
	}
	l.log.Debug().Dur("elapsed", elapsed).Msg("parsed suite sources")

	registry := catalog.New(l.options...)
	for _, result := range results {
		if result.Err != nil {
			return nil, result.Err
		}
		for _, decl := range result.Declarations {
			if err := replay(registry, decl); err != nil {
				return nil, fmt.Errorf("%s: %w", decl.Source(), err)
			}
		}
	}
	registry.Seal()

	stats := registry.Stats()
	l.log.Info().
		Int("suites", stats.Suites).
		Int("cases", stats.Cases).
		Int("pending", stats.Pending).
		Msg("catalog loaded")
	return registry, nil
}

func replay(registry *catalog.Registry, decl domain.Declaration) error {
	switch decl.Kind {
	case domain.ClassDeclaration:
		return registry.AddClass(decl.Class, decl.Suite)
	case domain.MethodDeclaration:
		return registry.AddMethod(decl.Method, decl.Case)
	default:
		return fmt.Errorf("unknown declaration kind %s", decl.Kind)
	}
}
