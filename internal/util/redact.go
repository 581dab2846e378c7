package util

import "regexp"

var (
	// key = value, key: "value", and JSON-escaped \"value\" forms.
	keyValuePattern = regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password|access[_-]?key|private[_-]?key)(?:\\?["'])?\s*[:=]\s*(?:\\?["'])?([^\s"'\\,;)]+)`)
	privateKeyBlock = regexp.MustCompile(`(?is)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?-----END [A-Z ]*PRIVATE KEY-----`)
	jwtPattern      = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.?[a-zA-Z0-9_-]*`)
	googleKey       = regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`)
	// OpenAI and OpenRouter keys, including sk-proj- and sk-or-v1- prefixes.
	skPattern = regexp.MustCompile(`(?i)sk-[a-z0-9_-]{20,}`)
)

// RedactSecrets masks credentials in tool output and arguments before
// they are recorded in a run result.
func RedactSecrets(input string) string {
	out := privateKeyBlock.ReplaceAllString(input, "[REDACTED PRIVATE KEY]")
	out = keyValuePattern.ReplaceAllString(out, `$1=[REDACTED]`)
	out = googleKey.ReplaceAllString(out, "[REDACTED KEY]")
	out = skPattern.ReplaceAllString(out, "[REDACTED KEY]")
	out = jwtPattern.ReplaceAllString(out, "[REDACTED JWT]")
	return out
}
