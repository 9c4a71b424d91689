package local

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ai-zerolab/lightblue/internal/tools"
	"github.com/ai-zerolab/lightblue/internal/util"
)

const defaultGrepResults = 100

// GrepTool searches file contents with a regex, preferring ripgrep when
// installed.
type GrepTool struct {
	rgPath   string
	maxBytes int
}

// NewGrepTool constructs the grep tool.
func NewGrepTool(maxBytes int) *GrepTool {
	rg, _ := exec.LookPath("rg")
	return &GrepTool{rgPath: rg, maxBytes: maxBytes}
}

func (g *GrepTool) Name() string { return "grep" }

func (g *GrepTool) Description() string {
	return "Fast content search tool. Searches file contents using regular expressions with full regex syntax. Filter files by pattern with the include parameter (e.g. \"*.js\", \"*.go\"). Returns matches as path:line:text."
}

func (g *GrepTool) Scopes() []tools.Scope { return []tools.Scope{tools.ScopeRead} }

func (g *GrepTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{"type": "string", "description": "Regular expression pattern to search for"},
			"path":    map[string]any{"type": "string", "description": "Directory to search in. Defaults to the working directory."},
			"include": map[string]any{"type": "string", "description": "Optional glob pattern to filter files (e.g. '*.go')"},
			"max_results": map[string]any{"type": "integer", "minimum": 1},
		},
		"required": []string{"pattern"},
	}
}

type grepArgs struct {
	Pattern    string `json:"pattern"`
	Path       string `json:"path"`
	Include    string `json:"include"`
	MaxResults int    `json:"max_results"`
}

// GrepResult is the payload for a grep call.
type GrepResult struct {
	Matches   []string `json:"matches"`
	Truncated bool     `json:"truncated"`
}

func (g *GrepTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var args grepArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if strings.TrimSpace(args.Pattern) == "" {
		return nil, errors.New("pattern is required")
	}
	if args.Path == "" {
		args.Path = "."
	}
	if args.MaxResults <= 0 {
		args.MaxResults = defaultGrepResults
	}

	var matches []string
	var err error
	if g.rgPath != "" {
		matches, err = g.runRipgrep(ctx, args)
	} else {
		matches, err = g.walk(ctx, args)
	}
	if err != nil {
		return tools.Errorf("Search failed: %s", err), nil
	}

	for i, line := range matches {
		matches[i] = util.RedactSecrets(line)
	}
	lines, truncated, _ := util.TruncateLinesAndBytes(matches, args.MaxResults, g.maxBytes)
	return GrepResult{Matches: lines, Truncated: truncated}, nil
}

func (g *GrepTool) runRipgrep(ctx context.Context, args grepArgs) ([]string, error) {
	cmdArgs := []string{"--no-heading", "--line-number"}
	if args.Include != "" {
		cmdArgs = append(cmdArgs, "--glob", args.Include)
	}
	cmdArgs = append(cmdArgs, args.Pattern, args.Path)

	out, err := exec.CommandContext(ctx, g.rgPath, cmdArgs...).Output()
	if err != nil {
		exitErr := &exec.ExitError{}
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return []string{}, nil
		}
		return nil, err
	}
	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return []string{}, nil
	}
	return lines, nil
}

// walk is the pure-Go path used when ripgrep is not installed.
func (g *GrepTool) walk(ctx context.Context, args grepArgs) ([]string, error) {
	re, err := regexp.Compile(args.Pattern)
	if err != nil {
		return nil, err
	}
	stopWalk := errors.New("stop-walk")

	var matches []string
	err = filepath.WalkDir(args.Path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != args.Path {
				return filepath.SkipDir
			}
			return nil
		}
		if args.Include != "" && !matchGlob(args.Include, p, args.Path) {
			return nil
		}
		file, err := os.Open(p)
		if err != nil {
			return nil
		}
		defer file.Close()
		if isBinary(file) {
			return nil
		}
		_, _ = file.Seek(0, io.SeekStart)
		scanner := bufio.NewScanner(file)
		lineNum := 1
		for scanner.Scan() {
			if re.MatchString(scanner.Text()) {
				matches = append(matches, fmt.Sprintf("%s:%d:%s", p, lineNum, scanner.Text()))
				if len(matches) >= args.MaxResults {
					return stopWalk
				}
			}
			lineNum++
		}
		return nil
	})
	if err != nil && !errors.Is(err, stopWalk) {
		return matches, err
	}
	return matches, nil
}

// GlobTool finds files by name pattern, newest first.
type GlobTool struct{}

// NewGlobTool constructs the glob tool.
func NewGlobTool() *GlobTool { return &GlobTool{} }

func (g *GlobTool) Name() string { return "glob" }

func (g *GlobTool) Description() string {
	return "Fast file pattern matching tool. Supports glob patterns like \"**/*.go\" or \"src/**/*.ts\". Returns matching file paths sorted by modification time, newest first."
}

func (g *GlobTool) Scopes() []tools.Scope { return []tools.Scope{tools.ScopeRead} }

func (g *GlobTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{"type": "string", "description": "Glob pattern to match files (e.g. '**/*.go')"},
			"path":    map[string]any{"type": "string", "description": "Directory to search in. Defaults to the working directory."},
		},
		"required": []string{"pattern"},
	}
}

// GlobResult is the payload for a glob call.
type GlobResult struct {
	Paths []string `json:"paths"`
}

func (g *GlobTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var args struct {
		Pattern string `json:"pattern"`
		Path    string `json:"path"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if strings.TrimSpace(args.Pattern) == "" {
		return nil, errors.New("pattern is required")
	}
	if args.Path == "" {
		args.Path = "."
	}

	type hit struct {
		path    string
		modTime time.Time
	}
	var hits []hit
	err := filepath.WalkDir(args.Path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != args.Path {
				return filepath.SkipDir
			}
			return nil
		}
		if !matchGlob(args.Pattern, p, args.Path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		hits = append(hits, hit{path: p, modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return tools.Errorf("Search failed: %s", err), nil
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].modTime.After(hits[j].modTime) })
	paths := make([]string, 0, len(hits))
	for _, h := range hits {
		paths = append(paths, h.path)
	}
	return GlobResult{Paths: paths}, nil
}

// matchGlob matches a path against a glob relative to root. "**" is
// treated as matching any directory depth.
func matchGlob(pattern, p, root string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if ok, _ := path.Match(pattern, rel); ok {
		return true
	}
	if ok, _ := path.Match(pattern, path.Base(rel)); ok {
		return true
	}
	if strings.Contains(pattern, "**") {
		simplified := strings.ReplaceAll(pattern, "**/", "")
		if ok, _ := path.Match(simplified, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

func isBinary(file *os.File) bool {
	buf := make([]byte, 8000)
	n, _ := file.Read(buf)
	for _, b := range buf[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}
