package redact

import (
	"regexp"
)

// Rule is one named substitution of the redaction pass.
type Rule struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string // regexp.Expand template; markers are bracketed so they never re-match
	Description string
}

// Replacement markers.
const (
	MarkerAPIKey       = "[REDACTED_API_KEY]"
	MarkerToken        = "[REDACTED_TOKEN]"
	MarkerJWT          = "[REDACTED_JWT]"
	MarkerEmail        = "[REDACTED_EMAIL]"
	MarkerPath         = "[REDACTED_PATH]"
	MarkerIP           = "[REDACTED_IP]"
	MarkerCreditCard   = "[REDACTED_CC]"
	MarkerAWSKey       = "[REDACTED_AWS_KEY]"
	MarkerSSHKey       = "[REDACTED_SSH_KEY]"
	MarkerDBConnection = "[REDACTED_DB_CONNECTION]"
	MarkerPassword     = "[REDACTED_PASSWORD]"
)

var (
	// api_key=..., apisecret: ..., access-token "..."; the key and any opening
	// quote are kept, the value is replaced.
	apiKeyRegex = regexp.MustCompile(`(?i)\b((?:api[_-]?key|apikey|api[_-]?secret|access[_-]?token)[=:\s]+['"]?)[a-zA-Z0-9_\-]{20,}`)

	// Any run of 40 or more token characters.
	longTokenRegex = regexp.MustCompile(`\b[a-zA-Z0-9_\-]{40,}\b`)

	// header.payload.signature with base64url segments.
	jwtRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	emailRegex = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)

	// /Users/<name>, /home/<name>, C:\Users\<name>
	userPathRegex = regexp.MustCompile(`(?:/Users/|/home/|C:\\Users\\)[^\s/\\]+`)

	ipv4Regex = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)

	creditCardRegex = regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`)

	awsAccessKeyRegex = regexp.MustCompile(`AKIA[0-9A-Z]{16}`)

	// Whole PEM block, across lines.
	privateKeyRegex = regexp.MustCompile(`(?s)-----BEGIN (?:RSA |DSA |EC |OPENSSH )?PRIVATE KEY-----.*?-----END (?:RSA |DSA |EC |OPENSSH )?PRIVATE KEY-----`)

	dbConnectionRegex = regexp.MustCompile(`(?i)(?:postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis)://[^\s@]+:[^\s@]+@\S+`)

	passwordRegex = regexp.MustCompile(`(?i)(?:password|passwd|pwd)[=:\s]+['"]?[^\s'"]{4,}['"]?`)

	bearerRegex = regexp.MustCompile(`(?i)Bearer\s+[a-zA-Z0-9_\-.]+`)
)

// defaultRules is the redaction pass in application order. Each rule sees the
// output of the previous one, so specific shapes must come before the generic
// ones that would otherwise consume them.
//
// The long-token rule runs before the JWT rule. Any JWT segment of 40 or more
// characters becomes [REDACTED_TOKEN] first, which breaks the eyJ.eyJ. shape,
// so only JWTs whose segments are all shorter than 40 get [REDACTED_JWT].
var defaultRules = []Rule{
	{
		Name:        "api_key",
		Regex:       apiKeyRegex,
		Replacement: "${1}" + MarkerAPIKey,
		Description: "Labeled API keys, secrets and access tokens",
	},
	{
		Name:        "long_token",
		Regex:       longTokenRegex,
		Replacement: MarkerToken,
		Description: "Opaque tokens of 40+ characters",
	},
	{
		Name:        "jwt",
		Regex:       jwtRegex,
		Replacement: MarkerJWT,
		Description: "JSON Web Tokens",
	},
	{
		Name:        "email",
		Regex:       emailRegex,
		Replacement: MarkerEmail,
		Description: "Email addresses",
	},
	{
		Name:        "user_path",
		Regex:       userPathRegex,
		Replacement: MarkerPath,
		Description: "Home directory paths containing a user name",
	},
	{
		Name:        "ipv4",
		Regex:       ipv4Regex,
		Replacement: MarkerIP,
		Description: "IPv4 addresses",
	},
	{
		Name:        "credit_card",
		Regex:       creditCardRegex,
		Replacement: MarkerCreditCard,
		Description: "Card-number-like digit groups",
	},
	{
		Name:        "aws_key",
		Regex:       awsAccessKeyRegex,
		Replacement: MarkerAWSKey,
		Description: "AWS access key IDs",
	},
	{
		Name:        "private_key",
		Regex:       privateKeyRegex,
		Replacement: MarkerSSHKey,
		Description: "PEM private key blocks",
	},
	{
		Name:        "db_connection",
		Regex:       dbConnectionRegex,
		Replacement: MarkerDBConnection,
		Description: "Database URIs with embedded credentials",
	},
	{
		Name:        "password",
		Regex:       passwordRegex,
		Replacement: "password=" + MarkerPassword,
		Description: "Labeled passwords",
	},
	{
		Name:        "bearer",
		Regex:       bearerRegex,
		Replacement: "Bearer " + MarkerToken,
		Description: "Bearer authorization values",
	},
}

// DefaultRules returns a copy of the built-in rules in application order.
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// RuleNames returns the names of the built-in rules in application order.
func RuleNames() []string {
	names := make([]string, len(defaultRules))
	for i, r := range defaultRules {
		names[i] = r.Name
	}
	return names
}
