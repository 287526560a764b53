package detect

// languages maps a label to the grammar used for syntax highlighting.
var languages = map[string]string{
	"Next.js":    "javascript",
	"React":      "jsx",
	"Vue":        "javascript",
	"Angular":    "typescript",
	"Python":     "python",
	"Node.js":    "javascript",
	"Docker":     "docker",
	"TypeScript": "typescript",
	"Rust":       "rust",
	"Go":         "go",
	"Java":       "java",
	"Bash/Shell": "bash",
	"PostgreSQL": "sql",
	"MySQL":      "sql",
	"MongoDB":    "javascript",
	"Nginx":      "nginx",
	"Apache":     "apacheconf",
	"HTTP":       "text",
	PlainText:    "text",
}

// Language returns the highlighting grammar for a label, "text" if unknown.
func Language(label string) string {
	if lang, ok := languages[label]; ok {
		return lang
	}
	return "text"
}
