package pathutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant                = "~"
	homeDirectoryErrorTemplateConstant = "unable to resolve home directory for %s: %w"
	absolutePathErrorTemplateConstant  = "unable to resolve absolute path for %s: %w"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander turns "~" prefixed configuration paths such as ~/.auditflow/store.json into
// paths rooted at the user's home directory. The home directory is looked up once.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	lookupOnce            sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves a leading "~" or "~/" to the home directory. Other paths, and every path
// when the home directory is unknown, are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	expandedPath, expandError := expander.expand(candidatePath)
	if expandError != nil {
		return candidatePath
	}
	return expandedPath
}

// Resolve expands candidatePath and makes it absolute. Unlike Expand it reports a missing
// home directory instead of silently keeping the tilde.
func (expander *HomeExpander) Resolve(candidatePath string) (string, error) {
	expandedPath, expandError := expander.expand(candidatePath)
	if expandError != nil {
		return "", expandError
	}
	if len(expandedPath) == 0 {
		return "", nil
	}
	absolutePath, absoluteError := filepath.Abs(expandedPath)
	if absoluteError != nil {
		return "", fmt.Errorf(absolutePathErrorTemplateConstant, candidatePath, absoluteError)
	}
	return absolutePath, nil
}

func (expander *HomeExpander) expand(candidatePath string) (string, error) {
	if expander == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath, nil
	}

	remainder := strings.TrimPrefix(candidatePath, tildeSymbolConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		// "~user" forms are not expanded.
		return candidatePath, nil
	}

	homeDirectory, homeError := expander.lookupHomeDirectory()
	if homeError != nil {
		return "", fmt.Errorf(homeDirectoryErrorTemplateConstant, candidatePath, homeError)
	}
	return filepath.Join(homeDirectory, remainder), nil
}

func (expander *HomeExpander) lookupHomeDirectory() (string, error) {
	expander.lookupOnce.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
		if expander.homeDirectoryError == nil && len(expander.homeDirectory) == 0 {
			expander.homeDirectoryError = os.ErrNotExist
		}
	})
	return expander.homeDirectory, expander.homeDirectoryError
}
