package ignore

// DefaultOrigin labels the built-in source in diagnostics.
const DefaultOrigin = "(defaults)"

// DefaultPatterns lists paths that are almost never useful in a project
// summary: VCS metadata, local environment files, caches and editor state.
var DefaultPatterns = []string{
	".git",
	".env",
	".env.local",
	".env.*.local",
	"node_modules",
	"__pycache__",
	"*.pyc",
	"*.pyo",
	".pytest_cache",
	".coverage",
	"*.log",
	".DS_Store",
	"Thumbs.db",
	".vscode",
	".idea",
	"*.swp",
	"*.swo",
	"*~",
}

// DefaultSource returns the built-in patterns as a Source. It is meant to be
// loaded first so that every ignore file can override it.
func DefaultSource() Source {
	return Source{Origin: DefaultOrigin, Patterns: append([]string(nil), DefaultPatterns...)}
}
