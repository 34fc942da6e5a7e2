package cmdguard

import (
	"regexp"
	"strings"
)

// secretPatterns match known API key and token formats in command output.
// These detect actual credential values, not variable names.
var secretPatterns = []*regexp.Regexp{
	// npm tokens: npm_...
	regexp.MustCompile(`npm_[a-zA-Z0-9]{20,}`),
	// GitHub tokens: ghp_, gho_, ghs_...
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),
	// OpenAI-style keys: sk-...
	regexp.MustCompile(`sk-[a-zA-Z0-9\-]{20,}`),
	// Generic long hex tokens (64+ chars) that look like API keys
	regexp.MustCompile(`\b[a-f0-9]{64,}\b`),
	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-_.]{20,}`),
}

// redactPlaceholder replaces matched secrets in output.
const redactPlaceholder = "[REDACTED]"

// ScanOutput checks command output for leaked secrets and returns a
// redacted copy. The second return value is the number of secrets found.
func ScanOutput(output string) (string, int) {
	count := 0
	result := output
	for _, re := range secretPatterns {
		matches := re.FindAllString(result, -1)
		if len(matches) > 0 {
			count += len(matches)
			result = re.ReplaceAllString(result, redactPlaceholder)
		}
	}
	return result, count
}

// envKeyValuePattern matches KEY=VALUE lines where KEY is a known
// sensitive env var name, as printed by `set` or `export -p`.
var envKeyValuePattern = regexp.MustCompile(
	`(?im)^(?:declare -x |export )?` +
		`(AIPROXY_\w*|OPENAI_\w*|NPM_TOKEN|GITHUB_TOKEN|API_KEY|API_SECRET|TASKGATE_\w*)` +
		`[= ].*$`,
)

// ScanOutputFull runs both secret pattern scanning and env key=value scanning.
func ScanOutputFull(output string) (string, int) {
	result, count := ScanOutput(output)

	envMatches := envKeyValuePattern.FindAllString(result, -1)
	if len(envMatches) > 0 {
		count += len(envMatches)
		result = envKeyValuePattern.ReplaceAllString(result, redactPlaceholder)
	}

	// Collapse consecutive redacted lines
	for strings.Contains(result, redactPlaceholder+"\n"+redactPlaceholder) {
		result = strings.ReplaceAll(result, redactPlaceholder+"\n"+redactPlaceholder, redactPlaceholder)
	}

	return result, count
}
