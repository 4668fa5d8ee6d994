// Package engine evaluates plant layout scripts. Scripts are zygomys Lisp
// run in a sandbox; the builtins declare equipment and ducts, and the
// result is the same layout record a TOML or YAML file decodes to.
package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/plantkit/pkg/config"
)

// EvalError is a parse or runtime error in the script itself.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script outlives the engine's timeout.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned to an Evaluate call that finished after a
	// newer call started.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

// Engine evaluates layout scripts. It is safe for concurrent use; every
// evaluation runs in a fresh sandbox. Only the most recent call's layout
// is returned.
type Engine struct {
	// Timeout bounds each evaluation. Zero means EvalTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{Timeout: EvalTimeout}
}

type outcome struct {
	file   *config.File
	errors []EvalError
	err    error
}

// begin starts a new generation and returns its number.
func (e *Engine) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

func (e *Engine) latest(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation == gen
}

// await collects the outcome of generation gen. A script that times out
// keeps running in its sandbox; its outcome is dropped.
func (e *Engine) await(ch <-chan outcome, gen uint64) (*config.File, []EvalError, error) {
	limit := e.Timeout
	if limit <= 0 {
		limit = EvalTimeout
	}
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case o := <-ch:
		if !e.latest(gen) {
			return nil, nil, ErrSuperseded
		}
		return o.file, o.errors, o.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, limit)
	}
}

// Evaluate runs source and returns the layout it declares.
//
//   - On success: layout, nil, nil
//   - On a script error: nil, eval errors, nil
//   - On timeout, panic or a superseded run: nil, nil, error
func (e *Engine) Evaluate(source string) (*config.File, []EvalError, error) {
	gen := e.begin()
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()

		f, evalErrs, err := e.evaluate(source)
		ch <- outcome{file: f, errors: evalErrs, err: err}
	}()

	return e.await(ch, gen)
}

func (e *Engine) evaluate(source string) (*config.File, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return &config.File{}, nil, nil
	}

	// The sandbox has no filesystem or system calls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	l := newLayout()
	registerBuiltins(env, l)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return l.file, nil, nil
}

// linePatterns match "Error on line N: ..." and "line N: ..." messages.
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?is)^line (\d+):\s*(.*)`),
}

// parseZygomysError pulls a line number out of a zygomys error when one
// is present.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range linePatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
