package condition

import "strings"

const maxDepth = 32

// Parse compiles a condition string. An empty string always holds. Commas at
// the top level join conjuncts, so "season spring, weather rain" needs both.
// A predicate keyword with no registered handler compiles to an Unknown node
// rather than an error.
func Parse(expr string) (Node, error) {
	if strings.TrimSpace(expr) == "" {
		return Constant(true), nil
	}
	return parse(expr, expr, 0)
}

func parse(root, expr string, depth int) (Node, error) {
	if depth > maxDepth {
		return nil, syntaxErrorf(root, "nested too deeply")
	}
	parts, err := splitTopLevel(expr)
	if err != nil {
		return nil, syntaxErrorf(root, "unterminated quote")
	}
	if len(parts) == 1 {
		return parseTerm(root, parts[0], depth)
	}
	children := make([]Node, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, syntaxErrorf(root, "empty condition between commas")
		}
		n, err := parseTerm(root, p, depth)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return All{Children: children}, nil
}

func parseTerm(root, expr string, depth int) (Node, error) {
	toks, err := tokenize(expr)
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			se.Expr = root
		}
		return nil, err
	}
	if len(toks) == 0 {
		return nil, syntaxErrorf(root, "empty expression")
	}

	head := toks[0]
	if head.quoted {
		if len(toks) > 1 {
			return nil, syntaxErrorf(root, "unexpected %q after quoted expression", toks[1].text)
		}
		return parseSub(root, head.text, depth)
	}

	switch strings.ToUpper(head.text) {
	case "ANY", "ALL":
		if len(toks) < 2 {
			return nil, syntaxErrorf(root, "%s needs at least one sub-expression", strings.ToUpper(head.text))
		}
		children := make([]Node, 0, len(toks)-1)
		for _, t := range toks[1:] {
			n, err := parseSub(root, t.text, depth)
			if err != nil {
				return nil, err
			}
			children = append(children, n)
		}
		if strings.EqualFold(head.text, "ANY") {
			return Any{Children: children}, nil
		}
		return All{Children: children}, nil
	case "!":
		if len(toks) < 2 {
			return nil, syntaxErrorf(root, "negation without operand")
		}
		if toks[1].quoted {
			if len(toks) > 2 {
				return nil, syntaxErrorf(root, "unexpected %q after negated expression", toks[2].text)
			}
			n, err := parseSub(root, toks[1].text, depth)
			if err != nil {
				return nil, err
			}
			return Not{Child: n}, nil
		}
		n, err := parsePredicate(root, toks[1].text, toks[2:])
		if err != nil {
			return nil, err
		}
		return Not{Child: n}, nil
	}

	if strings.HasPrefix(head.text, "!") {
		n, err := parsePredicate(root, head.text[1:], toks[1:])
		if err != nil {
			return nil, err
		}
		return Not{Child: n}, nil
	}
	return parsePredicate(root, head.text, toks[1:])
}

func parseSub(root, expr string, depth int) (Node, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, syntaxErrorf(root, "empty sub-expression")
	}
	return parse(root, expr, depth+1)
}

func parsePredicate(root, name string, toks []token) (Node, error) {
	args := make([]string, len(toks))
	for i, t := range toks {
		args[i] = t.text
	}
	kind, ok := keywords[strings.ToLower(name)]
	if !ok {
		return Unknown{Name: name, Args: args}, nil
	}
	src := strings.Join(append([]string{strings.ToLower(name)}, args...), " ")
	test, err := compilers[kind](args, src)
	if err != nil {
		return nil, syntaxErrorf(root, "%s: %v", kind, err)
	}
	return Predicate{Kind: kind, Args: args, test: test}, nil
}
