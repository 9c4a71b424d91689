package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/ai-zerolab/lightblue/internal/tools"
	"github.com/ai-zerolab/lightblue/internal/util"
)

// BashTool runs a single shell command with timeouts and output limits.
// Network, interactive, and destructive commands are blocked; the model is
// expected to use the web tools for network access instead.
type BashTool struct {
	maxBytes       int
	defaultTimeout time.Duration
}

// NewBashTool constructs the bash tool.
func NewBashTool(maxBytes int, defaultTimeout time.Duration) *BashTool {
	return &BashTool{maxBytes: maxBytes, defaultTimeout: defaultTimeout}
}

func (b *BashTool) Name() string { return "bash" }

func (b *BashTool) Description() string {
	return `Executes the given Bash command with an optional timeout.

The following commands are blocked: alias, curl, wget, axel, aria2c, nc, telnet, lynx, w3m, links, httpie, xh. Use the web tools for network access instead. Interactive commands (vim, less, top, ssh) are not supported. Output exceeding the configured limit is truncated.`
}

func (b *BashTool) Scopes() []tools.Scope { return []tools.Scope{tools.ScopeExec} }

func (b *BashTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command":         map[string]any{"type": "string", "description": "The command to execute"},
			"timeout_seconds": map[string]any{"type": "integer", "description": "Maximum execution time in seconds", "minimum": 1},
			"working_dir":     map[string]any{"type": "string", "description": "Directory to execute the command in"},
		},
		"required":             []string{"command"},
		"additionalProperties": false,
	}
}

type bashInput struct {
	Command        string `json:"command"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	WorkingDir     string `json:"working_dir"`
}

// BashResult carries command output.
type BashResult struct {
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ExitCode   int    `json:"exit_code"`
	DurationMs int64  `json:"duration_ms"`
	Truncated  bool   `json:"truncated"`
}

var (
	interactiveCommands = map[string]struct{}{
		"vim": {}, "vi": {}, "nano": {}, "less": {}, "more": {}, "man": {}, "top": {}, "htop": {}, "ssh": {}, "sftp": {},
	}
	networkCommands = map[string]struct{}{
		"alias": {}, "curl": {}, "curlie": {}, "wget": {}, "axel": {}, "aria2c": {}, "nc": {}, "netcat": {}, "telnet": {},
		"lynx": {}, "w3m": {}, "links": {}, "httpie": {}, "xh": {},
	}
	destructivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\brm\s+-rf\s+/`),
		regexp.MustCompile(`(?i)\bmkfs\b`),
		regexp.MustCompile(`(?i)\bdd\s+if=`),
		regexp.MustCompile(`(?i)\bshutdown\b`),
		regexp.MustCompile(`(?i)\breboot\b`),
		regexp.MustCompile(`(?i):\(\)\{`),
		regexp.MustCompile(`(?i)chmod\s+-R\s+777\s+/`),
	}
)

func (b *BashTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var args bashInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Command) == "" {
		return nil, errors.New("command is required")
	}

	if reason := blockedReason(args.Command); reason != "" {
		return tools.Errorf("%s", reason), nil
	}

	timeout := b.defaultTimeout
	if args.TimeoutSeconds > 0 {
		timeout = time.Duration(args.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-c", args.Command)
	if args.WorkingDir != "" {
		cmd.Dir = args.WorkingDir
	}
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start).Milliseconds()

	exitCode := 0
	if err != nil {
		exitErr := &exec.ExitError{}
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return tools.Errorf("command failed to start: %s", err), nil
		}
	}

	outStr := util.RedactSecrets(stdout.String())
	errStr := util.RedactSecrets(stderr.String())
	truncated := false
	if b.maxBytes > 0 {
		if trimmed, did := util.TruncateBytes(outStr, b.maxBytes); did {
			outStr = trimmed
			truncated = true
		}
		if trimmed, did := util.TruncateBytes(errStr, b.maxBytes); did {
			errStr = trimmed
			truncated = true
		}
	}

	return BashResult{
		Stdout:     outStr,
		Stderr:     errStr,
		ExitCode:   exitCode,
		DurationMs: duration,
		Truncated:  truncated,
	}, nil
}

func blockedReason(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	head := strings.ToLower(fields[0])
	if _, ok := interactiveCommands[head]; ok {
		return fmt.Sprintf("interactive commands are not allowed: %s", head)
	}
	for _, field := range fields {
		name := strings.ToLower(field)
		if _, ok := networkCommands[name]; ok {
			return fmt.Sprintf("network commands are blocked: %s (use the web tools instead)", name)
		}
	}
	for _, re := range destructivePatterns {
		if re.MatchString(command) {
			return "blocked potentially destructive command"
		}
	}
	return ""
}
