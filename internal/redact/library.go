package redact

import "regexp"

// Rule is a single detection pattern. Rules are immutable after
// construction and safe to share across goroutines.
type Rule struct {
	Name     string
	Category Category
	Pattern  *regexp.Regexp
	// Prefix is the placeholder prefix, e.g. "API_KEY" → "<API_KEY_1>".
	Prefix string
	// Group selects a capture group as the redaction span. Zero means the
	// whole match. Key-value rules use it so that "token=hunter2" keeps
	// the key and loses only the value.
	Group int
	// Residue marks high-confidence rules re-applied by the residue
	// checker. Permissive rules stay out to avoid warning storms.
	Residue bool
}

// Library is an ordered, immutable set of detection rules. It is built
// once at startup and passed explicitly into every Pipeline; there is no
// ambient global lookup.
type Library struct {
	rules []Rule
}

// NewLibrary builds a library from an explicit rule list.
func NewLibrary(rules []Rule) *Library {
	return &Library{rules: rules}
}

// Rules returns the rule list. Callers must not mutate it.
func (l *Library) Rules() []Rule {
	return l.rules
}

// builtinRules compile at package init. A malformed builtin regex is a
// programming error and panics before any session is processed.
var builtinRules = []Rule{
	// Secrets. Specific key formats first, the generic key=value rule last.
	{
		Name:     "aws-access-key-id",
		Category: CategorySecrets,
		Pattern:  regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`),
		Prefix:   "AWS_KEY",
		Residue:  true,
	},
	{
		Name:     "api-key",
		Category: CategorySecrets,
		Pattern:  regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{20,}`),
		Prefix:   "API_KEY",
		Residue:  true,
	},
	{
		Name:     "github-token",
		Category: CategorySecrets,
		Pattern:  regexp.MustCompile(`\b(?:ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9]{36,}`),
		Prefix:   "GITHUB_TOKEN",
		Residue:  true,
	},
	{
		Name:     "gitlab-pat",
		Category: CategorySecrets,
		Pattern:  regexp.MustCompile(`\bglpat-[A-Za-z0-9\-]{20,}`),
		Prefix:   "GITLAB_PAT",
		Residue:  true,
	},
	{
		Name:     "slack-token",
		Category: CategorySecrets,
		Pattern:  regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9\-]{10,}`),
		Prefix:   "SLACK_TOKEN",
		Residue:  true,
	},
	{
		Name:     "jwt",
		Category: CategorySecrets,
		Pattern:  regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]{8,}\.[A-Za-z0-9_\-]{8,}\.[A-Za-z0-9_\-.+/=]+`),
		Prefix:   "JWT",
		Residue:  true,
	},
	{
		Name:     "private-key",
		Category: CategorySecrets,
		Pattern:  regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`),
		Prefix:   "PRIVATE_KEY",
		Residue:  true,
	},
	{
		Name:     "connection-string",
		Category: CategorySecrets,
		Pattern:  regexp.MustCompile(`\b(?:postgres|postgresql|mysql|mongodb(?:\+srv)?|redis|amqp)://[^\s"'\\]+`),
		Prefix:   "CONN_STRING",
		Residue:  true,
	},
	{
		Name:     "secret-assignment",
		Category: CategorySecrets,
		Pattern:  regexp.MustCompile(`(?i)\b(?:password|passwd|secret|token|api[_-]?key|apikey|access[_-]?token|auth(?:orization)?)\b["']?[ \t]*[:=][ \t]*["']?([A-Za-z0-9+/=_\-.]{4,})`),
		Prefix:   "SECRET",
		Group:    1,
		Residue:  true,
	},

	// PII.
	{
		Name:     "email",
		Category: CategoryPII,
		Pattern:  regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`),
		Prefix:   "EMAIL",
		Residue:  true,
	},
	{
		Name:     "ssn",
		Category: CategoryPII,
		Pattern:  regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		Prefix:   "SSN",
		Residue:  true,
	},
	{
		Name:     "credit-card",
		Category: CategoryPII,
		Pattern:  regexp.MustCompile(`\b(?:\d{4}[ \-]){3}\d{4}\b`),
		Prefix:   "CARD",
	},
	{
		Name:     "ipv4",
		Category: CategoryPII,
		Pattern:  regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
		Prefix:   "IP",
	},

	// Paths. Home directories carry usernames; system paths leak layout.
	{
		Name:     "home-path",
		Category: CategoryPaths,
		Pattern:  regexp.MustCompile(`(?:/home|/Users|/root)(?:/[^\s"'\\:]+)+`),
		Prefix:   "PATH",
	},
	{
		Name:     "tilde-path",
		Category: CategoryPaths,
		Pattern:  regexp.MustCompile(`~(?:/[^\s"'\\:]+)+`),
		Prefix:   "PATH",
	},
}

// safeIPs are never tokenized: loopback and broadcast carry no identity.
var safeIPs = map[string]bool{
	"127.0.0.1":       true,
	"0.0.0.0":         true,
	"255.255.255.255": true,
}

// DefaultLibrary returns the builtin rule set. The same value is returned
// on every call; rules are identical across a process lifetime.
func DefaultLibrary() *Library {
	return defaultLibrary
}

var defaultLibrary = NewLibrary(builtinRules)
