package util

import "regexp"

// Secret shapes this system handles: provider API keys passed as env
// values, key/x-key/Bearer headers on outbound tool requests, and the
// generic token material that shows up in shell output.
var secretPatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)(api_key|apikey|x-key|secret|token|password|access_key|private_key)\s*[:=]\s*([^\s"']+)`), `$1=[REDACTED]`},
	{regexp.MustCompile(`(?i)(bearer)\s+[a-z0-9._~+/=-]{8,}`), `$1 [REDACTED]`},
	{regexp.MustCompile(`(?is)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?-----END [A-Z ]*PRIVATE KEY-----`), "[REDACTED PRIVATE KEY]"},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.?[a-zA-Z0-9_-]*`), "[REDACTED JWT]"},
	{regexp.MustCompile(`(?i)sk-[a-z0-9]{20,}`), "[REDACTED KEY]"},
	{regexp.MustCompile(`(?i)jina_[a-z0-9]{16,}`), "[REDACTED KEY]"},
	{regexp.MustCompile(`(?i)tvly-[a-z0-9-]{16,}`), "[REDACTED KEY]"},
}

// RedactSecrets removes likely secrets from text before it reaches logs,
// events, or the model conversation.
func RedactSecrets(input string) string {
	out := input
	for _, p := range secretPatterns {
		out = p.re.ReplaceAllString(out, p.replacement)
	}
	return out
}
