package valueobject

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Language represents a programming language identifier as a value object.
// The name is normalized to the lowercase grammar key used by the parsing
// layer, so "Go", "golang" and "go" all resolve to the same value.
type Language struct {
	name string
}

// Canonical grammar keys for commonly compared languages.
const (
	LanguageGo         = "go"
	LanguagePython     = "python"
	LanguageJavaScript = "javascript"
	LanguageTypeScript = "typescript"
	LanguageJava       = "java"
	LanguageC          = "c"
	LanguageCPlusPlus  = "cpp"
	LanguageRust       = "rust"
	LanguageRuby       = "ruby"
	LanguageBash       = "bash"
	LanguageHTML       = "html"
	LanguageCSS        = "css"
	LanguageJSON       = "json"
	LanguageYAML       = "yaml"
	LanguageSQL        = "sql"
)

// languageAliases maps alternate spellings to canonical grammar keys.
var languageAliases = map[string]string{
	"golang":     LanguageGo,
	"py":         LanguagePython,
	"python3":    LanguagePython,
	"js":         LanguageJavaScript,
	"jsx":        LanguageJavaScript,
	"node":       LanguageJavaScript,
	"ts":         LanguageTypeScript,
	"tsx":        LanguageTypeScript,
	"c++":        LanguageCPlusPlus,
	"cxx":        LanguageCPlusPlus,
	"rs":         LanguageRust,
	"rb":         LanguageRuby,
	"sh":         LanguageBash,
	"shell":      LanguageBash,
	"yml":        LanguageYAML,
	"postgresql": LanguageSQL,
}

// extensionLanguages maps file extensions (without the dot) to grammar keys.
var extensionLanguages = map[string]string{
	"go":   LanguageGo,
	"py":   LanguagePython,
	"pyi":  LanguagePython,
	"js":   LanguageJavaScript,
	"jsx":  LanguageJavaScript,
	"mjs":  LanguageJavaScript,
	"cjs":  LanguageJavaScript,
	"ts":   LanguageTypeScript,
	"tsx":  LanguageTypeScript,
	"java": LanguageJava,
	"c":    LanguageC,
	"h":    LanguageC,
	"cpp":  LanguageCPlusPlus,
	"cc":   LanguageCPlusPlus,
	"cxx":  LanguageCPlusPlus,
	"rs":   LanguageRust,
	"rb":   LanguageRuby,
	"sh":   LanguageBash,
	"bash": LanguageBash,
	"html": LanguageHTML,
	"htm":  LanguageHTML,
	"css":  LanguageCSS,
	"json": LanguageJSON,
	"yaml": LanguageYAML,
	"yml":  LanguageYAML,
	"sql":  LanguageSQL,
}

// NewLanguage creates a new Language value object with validation.
// The identifier is trimmed, lowercased and resolved through known aliases.
func NewLanguage(name string) (Language, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return Language{}, errors.New("language identifier cannot be empty")
	}

	if err := validateLanguageName(normalized); err != nil {
		return Language{}, fmt.Errorf("invalid language identifier: %w", err)
	}

	if canonical, ok := languageAliases[normalized]; ok {
		normalized = canonical
	}

	return Language{name: normalized}, nil
}

// DetectLanguageFromPath resolves a Language from a file path extension.
func DetectLanguageFromPath(path string) (Language, error) {
	if path == "" {
		return Language{}, errors.New("empty file path")
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return Language{}, fmt.Errorf("no file extension on %s", path)
	}

	name, ok := extensionLanguages[ext]
	if !ok {
		return Language{}, fmt.Errorf("no language known for extension .%s", ext)
	}

	return NewLanguage(name)
}

// validateLanguageName validates the normalized identifier format.
func validateLanguageName(name string) error {
	if len(name) > 64 {
		return fmt.Errorf("identifier too long (%d characters)", len(name))
	}

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '+' || r == '#' || r == '.':
		default:
			return fmt.Errorf("identifier contains invalid character %q", r)
		}
	}

	return nil
}

// Name returns the canonical grammar key for the language.
func (l Language) Name() string {
	return l.name
}

// String implements fmt.Stringer.
func (l Language) String() string {
	return l.name
}

// IsZero reports whether the language has not been set.
func (l Language) IsZero() bool {
	return l.name == ""
}

// Equal compares two languages by canonical name.
func (l Language) Equal(other Language) bool {
	return l.name == other.name
}
