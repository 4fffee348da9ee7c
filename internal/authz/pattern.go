// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/warden/internal/models"
)

// ErrMalformedPattern is returned when a permission rule cannot be compiled.
var ErrMalformedPattern = errors.New("malformed path pattern")

type tokenKind uint8

const (
	tokenLiteral tokenKind = iota
	tokenParam
	tokenWildcard
)

type token struct {
	kind tokenKind
	text string // literal text, or the parameter name
}

// RoutePattern is a compiled path pattern.
//
// Patterns are split on "/". A ":name" segment matches exactly one non-empty
// path segment, a "*" segment matches zero or more segments, and every other
// segment matches literally. Matching is anchored at both ends.
type RoutePattern struct {
	raw    string
	tokens []token
}

// CompilePattern compiles a path pattern such as "/api/v1/roles/:name" or
// "/api/v1/admin/*".
func CompilePattern(pattern string) (*RoutePattern, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedPattern)
	}
	if pattern[0] != '/' {
		return nil, fmt.Errorf("%w: %q must start with /", ErrMalformedPattern, pattern)
	}
	if strings.ContainsAny(pattern, "?#") {
		return nil, fmt.Errorf("%w: %q contains a query or fragment", ErrMalformedPattern, pattern)
	}

	segments := strings.Split(pattern[1:], "/")
	tokens := make([]token, 0, len(segments))
	for _, seg := range segments {
		switch {
		case seg == "*":
			// Collapse "*/*" into a single wildcard.
			if n := len(tokens); n > 0 && tokens[n-1].kind == tokenWildcard {
				continue
			}
			tokens = append(tokens, token{kind: tokenWildcard})
		case strings.Contains(seg, "*"):
			return nil, fmt.Errorf("%w: %q mixes * with other characters", ErrMalformedPattern, pattern)
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if name == "" || strings.Contains(name, ":") {
				return nil, fmt.Errorf("%w: %q has an invalid parameter segment", ErrMalformedPattern, pattern)
			}
			tokens = append(tokens, token{kind: tokenParam, text: name})
		default:
			tokens = append(tokens, token{kind: tokenLiteral, text: seg})
		}
	}

	return &RoutePattern{raw: pattern, tokens: tokens}, nil
}

// Match reports whether path matches the whole pattern.
func (p *RoutePattern) Match(path string) bool {
	if path == "" || path[0] != '/' {
		return false
	}
	return matchTokens(p.tokens, strings.Split(path[1:], "/"))
}

// String returns the source pattern.
func (p *RoutePattern) String() string {
	return p.raw
}

func matchTokens(tokens []token, segs []string) bool {
	for i, tok := range tokens {
		switch tok.kind {
		case tokenWildcard:
			rest := tokens[i+1:]
			if len(rest) == 0 {
				return true
			}
			for j := 0; j <= len(segs); j++ {
				if matchTokens(rest, segs[j:]) {
					return true
				}
			}
			return false
		case tokenParam:
			if len(segs) == 0 || segs[0] == "" {
				return false
			}
		case tokenLiteral:
			if len(segs) == 0 || segs[0] != tok.text {
				return false
			}
		}
		segs = segs[1:]
	}
	return len(segs) == 0
}

// CompiledRule is a PermissionRule with its path pattern compiled.
type CompiledRule struct {
	Method  string
	Pattern *RoutePattern
	Rule    models.PermissionRule
}

// CompileRule compiles a single permission rule. A rule without a method is
// malformed.
func CompileRule(rule models.PermissionRule) (*CompiledRule, error) {
	method := rule.NormalizedMethod()
	if method == "" {
		return nil, fmt.Errorf("%w: rule for %q has no method", ErrMalformedPattern, rule.Path)
	}
	pattern, err := CompilePattern(rule.Path)
	if err != nil {
		return nil, err
	}
	return &CompiledRule{Method: method, Pattern: pattern, Rule: rule}, nil
}

// Matches reports whether the rule allows method on path. Method comparison
// is case-insensitive.
func (r *CompiledRule) Matches(method, path string) bool {
	if r.Method != models.MethodAny && r.Method != models.NormalizeMethod(method) {
		return false
	}
	return r.Pattern.Match(path)
}
