package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ContentMatch is a state of the deterministic automaton compiled from a content
// expression. It answers which node types may come next and whether the content
// may end here.
type ContentMatch struct {
	ValidEnd bool
	next     []matchEdge
}

type matchEdge struct {
	typ  *NodeType
	next *ContentMatch
}

var emptyMatch = &ContentMatch{ValidEnd: true}

// MatchType returns the state reached after a node of type t, or nil.
func (m *ContentMatch) MatchType(t *NodeType) *ContentMatch {
	for _, e := range m.next {
		if e.typ == t {
			return e.next
		}
	}
	return nil
}

// MatchFragment advances the automaton over nodes and returns the resulting
// state, or nil when one of the nodes is not accepted.
func (m *ContentMatch) MatchFragment(nodes []*Node) *ContentMatch {
	cur := m
	for _, n := range nodes {
		if cur == nil {
			return nil
		}
		cur = cur.MatchType(n.Type)
	}
	return cur
}

// InlineContent reports whether the state expects inline children.
func (m *ContentMatch) InlineContent() bool {
	return len(m.next) > 0 && m.next[0].typ.IsInline()
}

// DefaultType returns the first type that can be generated at this position.
func (m *ContentMatch) DefaultType() *NodeType {
	for _, e := range m.next {
		if !e.typ.IsText() && !e.typ.HasRequiredAttrs() {
			return e.typ
		}
	}
	return nil
}

// EdgeCount is the number of outgoing transitions.
func (m *ContentMatch) EdgeCount() int { return len(m.next) }

// Edge returns the n-th outgoing transition.
func (m *ContentMatch) Edge(n int) (*NodeType, *ContentMatch) {
	e := m.next[n]
	return e.typ, e.next
}

// FillBefore finds the shortest sequence of generated nodes that, inserted before
// after, makes the content match. With toEnd the result must also reach a valid end.
// Text types and types with required attributes are never generated.
func (m *ContentMatch) FillBefore(after []*Node, toEnd bool) ([]*Node, bool) {
	seen := []*ContentMatch{m}
	var search func(match *ContentMatch, types []*NodeType) ([]*Node, bool)
	search = func(match *ContentMatch, types []*NodeType) ([]*Node, bool) {
		if finished := match.MatchFragment(after); finished != nil && (!toEnd || finished.ValidEnd) {
			nodes := make([]*Node, 0, len(types))
			for _, t := range types {
				n, err := t.CreateAndFill(nil, nil, nil)
				if err != nil {
					return nil, false
				}
				nodes = append(nodes, n)
			}
			return nodes, true
		}
		for _, e := range match.next {
			if e.typ.IsText() || e.typ.HasRequiredAttrs() || containsMatch(seen, e.next) {
				continue
			}
			seen = append(seen, e.next)
			if found, ok := search(e.next, append(types[:len(types):len(types)], e.typ)); ok {
				return found, true
			}
		}
		return nil, false
	}
	return search(m, nil)
}

func (m *ContentMatch) String() string {
	var seen []*ContentMatch
	var scan func(*ContentMatch)
	scan = func(c *ContentMatch) {
		seen = append(seen, c)
		for _, e := range c.next {
			if !containsMatch(seen, e.next) {
				scan(e.next)
			}
		}
	}
	scan(m)

	var b strings.Builder
	for i, c := range seen {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strconv.Itoa(i))
		if c.ValidEnd {
			b.WriteString("*")
		}
		b.WriteString(" ")
		for j, e := range c.next {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s->%d", e.typ.Name, indexOfMatch(seen, e.next))
		}
	}
	return b.String()
}

func containsMatch(list []*ContentMatch, m *ContentMatch) bool {
	return indexOfMatch(list, m) >= 0
}

func indexOfMatch(list []*ContentMatch, m *ContentMatch) int {
	for i, c := range list {
		if c == m {
			return i
		}
	}
	return -1
}

// --- Expression parsing ---

type exprKind int

const (
	exprName exprKind = iota
	exprChoice
	exprSeq
	exprPlus
	exprStar
	exprOpt
	exprRange
)

type expr struct {
	kind     exprKind
	typ      *NodeType
	exprs    []*expr
	min, max int // max == -1 means unbounded
}

type tokenStream struct {
	source string
	tokens []string
	pos    int
	types  *Schema
	inline *bool
}

func tokenizeContent(s string) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			word.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}

func (s *tokenStream) next() string {
	if s.pos < len(s.tokens) {
		return s.tokens[s.pos]
	}
	return ""
}

func (s *tokenStream) eat(tok string) bool {
	if s.next() == tok {
		s.pos++
		return true
	}
	return false
}

func (s *tokenStream) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s (in content expression %q)", ErrInvalidSpec, fmt.Sprintf(format, args...), s.source)
}

func parseContentMatch(source string, types *Schema) (*ContentMatch, error) {
	stream := &tokenStream{source: source, tokens: tokenizeContent(source), types: types}
	if len(stream.tokens) == 0 {
		return emptyMatch, nil
	}
	e, err := stream.parseExpr()
	if err != nil {
		return nil, err
	}
	if stream.next() != "" {
		return nil, stream.errorf("unexpected trailing input %q", stream.next())
	}
	match := buildDFA(buildNFA(e))
	if err := checkForDeadEnds(match, stream); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *tokenStream) parseExpr() (*expr, error) {
	var exprs []*expr
	for {
		e, err := s.parseExprSeq()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !s.eat("|") {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &expr{kind: exprChoice, exprs: exprs}, nil
}

func (s *tokenStream) parseExprSeq() (*expr, error) {
	var exprs []*expr
	for tok := s.next(); tok != "" && tok != ")" && tok != "|"; tok = s.next() {
		e, err := s.parseExprSubscript()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	switch len(exprs) {
	case 0:
		return nil, s.errorf("empty expression")
	case 1:
		return exprs[0], nil
	default:
		return &expr{kind: exprSeq, exprs: exprs}, nil
	}
}

func (s *tokenStream) parseExprSubscript() (*expr, error) {
	e, err := s.parseExprAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case s.eat("+"):
			e = &expr{kind: exprPlus, exprs: []*expr{e}}
		case s.eat("*"):
			e = &expr{kind: exprStar, exprs: []*expr{e}}
		case s.eat("?"):
			e = &expr{kind: exprOpt, exprs: []*expr{e}}
		case s.eat("{"):
			e, err = s.parseExprRange(e)
			if err != nil {
				return nil, err
			}
		default:
			return e, nil
		}
	}
}

func (s *tokenStream) parseNum() (int, error) {
	n, err := strconv.Atoi(s.next())
	if err != nil {
		return 0, s.errorf("expected number, got %q", s.next())
	}
	s.pos++
	return n, nil
}

func (s *tokenStream) parseExprRange(e *expr) (*expr, error) {
	lo, err := s.parseNum()
	if err != nil {
		return nil, err
	}
	hi := lo
	if s.eat(",") {
		if s.next() != "}" {
			if hi, err = s.parseNum(); err != nil {
				return nil, err
			}
		} else {
			hi = -1
		}
	}
	if !s.eat("}") {
		return nil, s.errorf("unclosed braced range")
	}
	return &expr{kind: exprRange, min: lo, max: hi, exprs: []*expr{e}}, nil
}

func (s *tokenStream) resolveName(name string) ([]*NodeType, error) {
	if t, ok := s.types.nodeByName[name]; ok {
		return []*NodeType{t}, nil
	}
	var result []*NodeType
	for _, t := range s.types.nodes {
		if t.InGroup(name) {
			result = append(result, t)
		}
	}
	if len(result) == 0 {
		return nil, s.errorf("no node type or group %q found", name)
	}
	return result, nil
}

func (s *tokenStream) parseExprAtom() (*expr, error) {
	if s.eat("(") {
		e, err := s.parseExpr()
		if err != nil {
			return nil, err
		}
		if !s.eat(")") {
			return nil, s.errorf("missing closing paren")
		}
		return e, nil
	}
	tok := s.next()
	if tok == "" || !isWord(tok) {
		return nil, s.errorf("unexpected token %q", tok)
	}
	types, err := s.resolveName(tok)
	if err != nil {
		return nil, err
	}
	s.pos++
	exprs := make([]*expr, 0, len(types))
	for _, t := range types {
		if s.inline == nil {
			inline := t.IsInline()
			s.inline = &inline
		} else if *s.inline != t.IsInline() {
			return nil, s.errorf("mixing inline and block content")
		}
		exprs = append(exprs, &expr{kind: exprName, typ: t})
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &expr{kind: exprChoice, exprs: exprs}, nil
}

func isWord(tok string) bool {
	for _, r := range tok {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}

// --- Automaton construction ---

type nfaEdge struct {
	term *NodeType // nil for epsilon transitions
	to   int
}

type nfa struct {
	states [][]*nfaEdge
}

func (a *nfa) node() int {
	a.states = append(a.states, nil)
	return len(a.states) - 1
}

func (a *nfa) edge(from, to int, term *NodeType) *nfaEdge {
	e := &nfaEdge{term: term, to: to}
	a.states[from] = append(a.states[from], e)
	return e
}

func connect(edges []*nfaEdge, to int) {
	for _, e := range edges {
		e.to = to
	}
}

func buildNFA(e *expr) *nfa {
	a := &nfa{states: [][]*nfaEdge{nil}}
	out := a.compile(e, 0)
	connect(out, a.node())
	return a
}

// compile returns the dangling edges leaving the fragment for e.
func (a *nfa) compile(e *expr, from int) []*nfaEdge {
	switch e.kind {
	case exprChoice:
		var out []*nfaEdge
		for _, sub := range e.exprs {
			out = append(out, a.compile(sub, from)...)
		}
		return out
	case exprSeq:
		for i := 0; ; i++ {
			next := a.compile(e.exprs[i], from)
			if i == len(e.exprs)-1 {
				return next
			}
			from = a.node()
			connect(next, from)
		}
	case exprStar:
		loop := a.node()
		a.edge(from, loop, nil)
		connect(a.compile(e.exprs[0], loop), loop)
		return []*nfaEdge{a.edge(loop, -1, nil)}
	case exprPlus:
		loop := a.node()
		connect(a.compile(e.exprs[0], from), loop)
		connect(a.compile(e.exprs[0], loop), loop)
		return []*nfaEdge{a.edge(loop, -1, nil)}
	case exprOpt:
		return append([]*nfaEdge{a.edge(from, -1, nil)}, a.compile(e.exprs[0], from)...)
	case exprRange:
		cur := from
		for i := 0; i < e.min; i++ {
			next := a.node()
			connect(a.compile(e.exprs[0], cur), next)
			cur = next
		}
		if e.max == -1 {
			connect(a.compile(e.exprs[0], cur), cur)
		} else {
			for i := e.min; i < e.max; i++ {
				next := a.node()
				a.edge(cur, next, nil)
				connect(a.compile(e.exprs[0], cur), next)
				cur = next
			}
		}
		return []*nfaEdge{a.edge(cur, -1, nil)}
	default:
		return []*nfaEdge{a.edge(from, -1, e.typ)}
	}
}

// nullFrom returns the sorted epsilon closure of state n.
func (a *nfa) nullFrom(n int) []int {
	var result []int
	var scan func(int)
	scan = func(n int) {
		edges := a.states[n]
		if len(edges) == 1 && edges[0].term == nil {
			scan(edges[0].to)
			return
		}
		result = append(result, n)
		for _, e := range edges {
			if e.term == nil && !containsInt(result, e.to) {
				scan(e.to)
			}
		}
	}
	scan(n)
	sort.Ints(result)
	return result
}

func buildDFA(a *nfa) *ContentMatch {
	labeled := make(map[string]*ContentMatch)
	final := len(a.states) - 1

	var explore func(states []int) *ContentMatch
	explore = func(states []int) *ContentMatch {
		type group struct {
			term   *NodeType
			states []int
		}
		var out []*group
		for _, n := range states {
			for _, e := range a.states[n] {
				if e.term == nil {
					continue
				}
				var set *group
				for _, g := range out {
					if g.term == e.term {
						set = g
					}
				}
				for _, target := range a.nullFrom(e.to) {
					if set == nil {
						set = &group{term: e.term}
						out = append(out, set)
					}
					if !containsInt(set.states, target) {
						set.states = append(set.states, target)
					}
				}
			}
		}

		state := &ContentMatch{ValidEnd: containsInt(states, final)}
		labeled[stateKey(states)] = state
		for _, g := range out {
			sort.Ints(g.states)
			next, ok := labeled[stateKey(g.states)]
			if !ok {
				next = explore(g.states)
			}
			state.next = append(state.next, matchEdge{typ: g.term, next: next})
		}
		return state
	}
	return explore(a.nullFrom(0))
}

func checkForDeadEnds(match *ContentMatch, s *tokenStream) error {
	work := []*ContentMatch{match}
	for i := 0; i < len(work); i++ {
		state := work[i]
		dead := !state.ValidEnd
		var nodes []string
		for _, e := range state.next {
			nodes = append(nodes, e.typ.Name)
			if dead && !(e.typ.IsText() || e.typ.HasRequiredAttrs()) {
				dead = false
			}
			if !containsMatch(work, e.next) {
				work = append(work, e.next)
			}
		}
		if dead {
			return s.errorf("only non-generatable nodes (%s) in a required position", strings.Join(nodes, ", "))
		}
	}
	return nil
}

func stateKey(states []int) string {
	parts := make([]string, len(states))
	for i, n := range states {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
