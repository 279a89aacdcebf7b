package treesitter

import (
	"codeparity/internal/adapter/outbound/treesitter/errors"
	"codeparity/internal/application/common/slogger"
	"codeparity/internal/domain/valueobject"
	"context"
	"sync"

	forest "github.com/alexaandru/go-sitter-forest"
	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// GrammarResolver maps canonical language identifiers to loadable
// tree-sitter grammars backed by go-sitter-forest. Resolution is idempotent
// per identifier, so successful lookups are cached in an append-only map
// that is safe for concurrent readers and never invalidated within a
// process lifetime.
type GrammarResolver struct {
	mu       sync.RWMutex
	grammars map[string]*tree_sitter.Language
}

// NewGrammarResolver creates a new empty GrammarResolver.
func NewGrammarResolver() *GrammarResolver {
	return &GrammarResolver{
		grammars: make(map[string]*tree_sitter.Language),
	}
}

// Resolve returns the grammar for a language, loading it from the forest
// registry on first use. Unknown identifiers fail with a GrammarUnavailable
// parser error; resolution never partially succeeds.
func (r *GrammarResolver) Resolve(
	ctx context.Context,
	language valueobject.Language,
) (*tree_sitter.Language, error) {
	name := language.Name()

	r.mu.RLock()
	grammar, ok := r.grammars[name]
	r.mu.RUnlock()
	if ok {
		return grammar, nil
	}

	grammar = lookupGrammar(name)
	if grammar == nil {
		slogger.Debug(ctx, "Grammar resolution failed", slogger.Fields{
			"language": name,
		})
		return nil, parsererrors.NewGrammarUnavailableError(name).WithOperation("resolve")
	}

	r.mu.Lock()
	// Another goroutine may have resolved the same language meanwhile;
	// both loads yield the same grammar, so last write wins harmlessly.
	r.grammars[name] = grammar
	r.mu.Unlock()

	slogger.Debug(ctx, "Grammar resolved and cached", slogger.Fields{
		"language": name,
	})

	return grammar, nil
}

// lookupGrammar resolves a grammar key through the forest registry. The
// registry panics on unknown keys (the lookup calls a nil constructor func),
// so the call runs behind recover and an unknown language surfaces as a nil
// grammar.
func lookupGrammar(name string) (grammar *tree_sitter.Language) {
	defer func() {
		_ = recover() //nolint:errcheck // recover() returns any, not error
	}()

	grammar = forest.GetLanguage(name)

	return
}

// CachedLanguages returns the identifiers resolved so far.
func (r *GrammarResolver) CachedLanguages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.grammars))
	for name := range r.grammars {
		names = append(names, name)
	}
	return names
}
