package detect

import (
	"regexp"
)

// Signature ties a label to the pattern whose matches are counted for it.
type Signature struct {
	Label   string
	Pattern *regexp.Regexp

	// Exclude, when set, drops individual matches whose text it matches.
	// RE2 has no lookahead, so "node but not node modules" is written as a
	// pattern that also matches the unwanted form plus an exclusion.
	Exclude *regexp.Regexp
}

// NewSignature compiles pattern case-insensitively.
func NewSignature(label, pattern string) (Signature, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return Signature{}, err
	}
	return Signature{Label: label, Pattern: re}, nil
}

func mustSignature(label, pattern string) Signature {
	return Signature{Label: label, Pattern: regexp.MustCompile("(?i)" + pattern)}
}

// builtIn is the signature table in declaration order. Order decides ties.
var builtIn = []Signature{
	mustSignature("Next.js", `next dev|next build|next start|next export|@next/|nextjs|▲ Next\.js`),
	mustSignature("React", `react-scripts|create-react-app|react-dom|ReactDOM`),
	mustSignature("Vue", `vue-cli|@vue/|npm run serve.*vue`),
	mustSignature("Angular", `ng serve|ng build|@angular/|Angular CLI`),
	mustSignature("Python", `python|pip install|pipenv|poetry|django|flask|uvicorn|\.py"|ImportError|ModuleNotFoundError`),
	{
		Label:   "Node.js",
		Pattern: regexp.MustCompile(`(?i)node (?:modules)?|npm (?:start|run|install|test)|yarn (?:start|run|install|test)|nodemon`),
		Exclude: regexp.MustCompile(`(?i)^node modules$`),
	},
	mustSignature("Docker", `docker|docker-compose|dockerfile|container|image built|successfully tagged`),
	mustSignature("Kubernetes", `kubectl|k8s|kubernetes|deployment|pod|service`),
	mustSignature("Git", `git (?:commit|push|pull|clone|checkout|merge|rebase|status|log|diff)|fatal: not a git repository`),
	mustSignature("TypeScript", `tsc|typescript|\.ts\(|error TS\d+:`),
	mustSignature("Rust", `cargo|rustc|\.rs:|error\[E\d+\]`),
	mustSignature("Go", `go run|go build|go test|\.go:|panic:`),
	mustSignature("Java", `javac|java\.|\.java:|Exception in thread`),
	mustSignature("PostgreSQL", `postgres|psql|ERROR:.*database|relation.*does not exist`),
	mustSignature("MySQL", `mysql|ERROR \d+ \(.*\)`),
	mustSignature("MongoDB", `mongo|mongodb|MongoError`),
	mustSignature("Redis", `redis-cli|redis-server|WRONGTYPE|ERR`),
	mustSignature("Webpack", `webpack|compiled (?:successfully|with \d+ warning)`),
	mustSignature("Vite", `vite|VITE|Local:.*:\d+|ready in \d+ms`),
	mustSignature("Jest", `jest|PASS|FAIL|Test Suites:|Tests:`),
	mustSignature("Pytest", `pytest|test_.*\.py|passed|failed|ERROR.*test_`),
	mustSignature("ESLint", `eslint|error.*Parsing error|warning.*no-unused-vars`),
	mustSignature("Prettier", `prettier|Code style issues`),
	mustSignature("Vercel", `vercel|Deployed to production|Deployment completed`),
	mustSignature("Netlify", `netlify|Site is live|Deploy succeeded`),
	mustSignature("AWS", `aws|amazonaws|cloudformation|s3|ec2|lambda`),
	mustSignature("Nginx", `nginx|error_log|access_log|\[error\]|\[warn\]`),
	mustSignature("Apache", `apache|httpd|AH\d+:`),
	mustSignature("Bash/Shell", `bash|sh:|zsh|command not found|permission denied|No such file or directory`),
	mustSignature("HTTP", `\b(?:GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS)\s+/|\d{3}\s+in\s+\d+(?:\.\d+)?(?:ms|μs|s)|(?:compile|render):\s+\d+`),
}
