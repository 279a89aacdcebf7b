package outbound

import (
	"codeparity/internal/domain/valueobject"
	"context"
)

// SyntaxParser turns source text into a domain SyntaxTree for a given
// language. Implementations fail explicitly: an error return means no tree
// was produced, never a partial one. Callers decide how to degrade when a
// grammar is unavailable.
type SyntaxParser interface {
	// Parse parses source as the given language. It returns a
	// parsererrors.ParserError of category GrammarUnavailable when the
	// language cannot be resolved to a grammar, and ParseFailure when the
	// underlying parser fails. Implementations must be safe for
	// concurrent use.
	Parse(ctx context.Context, source []byte, language valueobject.Language) (*valueobject.SyntaxTree, error)

	// SupportedLanguages returns the canonical grammar keys the parser
	// can currently resolve.
	SupportedLanguages() []string
}
