// Package infertest provides a fake type inference engine for tests.
package infertest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/matzehuels/typediagram/pkg/diagram"
	"github.com/matzehuels/typediagram/pkg/httputil"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

// FstExpression is the expression answered by [FstResult].
const FstExpression = "λx.y.x"

// Request records one call received by the fake engine.
type Request struct {
	Expression string
	RequestID  string
}

// Engine is an httptest server speaking the engine's /typing protocol.
// Expressions in Results are answered with that result; every other
// expression is rejected with parsed=false.
type Engine struct {
	*httptest.Server

	mu        sync.Mutex
	results   map[string]*diagram.TypingResult
	requests  []Request
	failFirst int
}

// NewEngine starts an engine that knows [FstExpression]. It is closed when
// the test ends.
func NewEngine(tb testing.TB) *Engine {
	tb.Helper()
	e := &Engine{results: map[string]*diagram.TypingResult{FstExpression: FstResult()}}
	e.Server = httptest.NewServer(http.HandlerFunc(e.serve))
	tb.Cleanup(e.Close)
	return e
}

// Set makes the engine answer expression with res.
func (e *Engine) Set(expression string, res *diagram.TypingResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.results[expression] = res
}

// FailNext makes the next n requests fail with 503.
func (e *Engine) FailNext(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failFirst = n
}

// Requests returns the requests received so far.
func (e *Engine) Requests() []Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Request(nil), e.requests...)
}

func (e *Engine) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/typing" {
		http.NotFound(w, r)
		return
	}
	expr := r.URL.Query().Get("expression")

	e.mu.Lock()
	e.requests = append(e.requests, Request{Expression: expr, RequestID: r.Header.Get(httputil.HeaderRequestID)})
	fail := e.failFirst > 0
	if fail {
		e.failFirst--
	}
	res, ok := e.results[expr]
	e.mu.Unlock()

	if fail {
		http.Error(w, "engine restarting", http.StatusServiceUnavailable)
		return
	}
	if !ok {
		res = &diagram.TypingResult{Parsed: false, Error: "parse error at 1: unexpected " + expr}
	}
	data, err := diagram.EncodeTypingResult(res)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func tv(n string) richtext.Run { return richtext.Concat(richtext.Italic("t"), richtext.Sub(n)) }

func arrow(a, b richtext.Run) richtext.Run {
	return richtext.Concat(a, richtext.Plain(" → "), b)
}

// FstResult is the typing of λx.y.x: t1 → t2 → t1.
func FstResult() *diagram.TypingResult {
	plain := richtext.Plain
	t1, t2 := tv("1"), tv("2")
	return &diagram.TypingResult{
		Parsed: true,
		Expr:   plain(FstExpression),
		Type:   arrow(t1, arrow(t2, t1)),
		AST: diagram.Tree(plain("Lam"),
			diagram.Leaf(plain("x")),
			diagram.Tree(plain("Lam"),
				diagram.Leaf(plain("y")),
				diagram.Tree(plain("Var"), diagram.Leaf(plain("x"))),
			),
		),
		Proof: diagram.Infer(
			richtext.Concat(plain("⊢ λx.y.x : "), arrow(t1, arrow(t2, t1))),
			richtext.Mid("Abs"),
			diagram.Infer(
				richtext.Concat(plain("x : "), t1, plain(" ⊢ λy.x : "), arrow(t2, t1)),
				richtext.Mid("Abs"),
				diagram.Axiom(
					richtext.Concat(plain("x : "), t1, plain(", y : "), t2, plain(" ⊢ x : "), t1),
					richtext.Mid("Var"),
				),
			),
		),
		Unification: []diagram.Equation{
			{LHS: tv("3"), Relation: plain("="), RHS: arrow(t2, t1)},
			{LHS: tv("4"), Relation: plain("="), RHS: arrow(t1, tv("3"))},
		},
	}
}
