//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

// Package restriction decides, per handler per document, whether the handler
// applies: a handler carries a set of rules matched against document metadata.
package restriction

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"trpc.group/trpc-go/trpc-docpipe-go/document"
)

// Rule restricts a handler to documents whose metadata field holds at least
// one value fully matching the rule's pattern. A rule is immutable once
// constructed and its pattern is compiled at construction time.
type Rule struct {
	field              string
	expression         string
	pattern            *regexp.Regexp
	caseSensitive      bool
	fieldCaseSensitive bool
}

// NewRule compiles a rule for the given metadata field. The expression must
// fully match a field value (not a substring); caseSensitive governs value
// comparison. Field-name lookup is case-sensitive by default, see
// FieldCaseInsensitive. An invalid expression is a construction-time error.
func NewRule(field, expression string, caseSensitive bool) (Rule, error) {
	flags := ""
	if !caseSensitive {
		flags = "(?i)"
	}
	pattern, err := regexp.Compile(flags + `\A(?:` + expression + `)\z`)
	if err != nil {
		return Rule{}, fmt.Errorf("compile restriction pattern %q: %w", expression, err)
	}
	return Rule{
		field:              field,
		expression:         expression,
		pattern:            pattern,
		caseSensitive:      caseSensitive,
		fieldCaseSensitive: true,
	}, nil
}

// MustNewRule is NewRule that panics on an invalid expression.
// Intended for statically known patterns.
func MustNewRule(field, expression string, caseSensitive bool) Rule {
	r, err := NewRule(field, expression, caseSensitive)
	if err != nil {
		panic(err)
	}
	return r
}

// FieldCaseInsensitive returns a copy of the rule whose field-name lookup
// ignores case during evaluation. This mode is separate from the value
// case-sensitivity flag.
func (r Rule) FieldCaseInsensitive() Rule {
	r.fieldCaseSensitive = false
	return r
}

// Field returns the metadata field the rule matches against.
func (r Rule) Field() string { return r.field }

// Expression returns the rule's pattern source.
func (r Rule) Expression() string { return r.expression }

// CaseSensitive reports whether value matching considers character case.
func (r Rule) CaseSensitive() bool { return r.caseSensitive }

// Equal reports whether both rules have the same field, expression and flags.
func (r Rule) Equal(other Rule) bool {
	return r.field == other.field &&
		r.expression == other.expression &&
		r.caseSensitive == other.caseSensitive &&
		r.fieldCaseSensitive == other.fieldCaseSensitive
}

// String returns a debug representation of the rule.
func (r Rule) String() string {
	return fmt.Sprintf("restriction.Rule{field=%s, expression=%s, caseSensitive=%v}",
		r.field, r.expression, r.caseSensitive)
}

// Matches reports whether any value of the rule's field fully matches the
// rule's pattern. Values are matched as stored, whitespace included.
func (r Rule) Matches(md document.Metadata) bool {
	for _, value := range r.values(md) {
		if r.pattern.MatchString(value) {
			return true
		}
	}
	return false
}

func (r Rule) values(md document.Metadata) []string {
	if r.fieldCaseSensitive {
		return md.Get(r.field)
	}
	var values []string
	for field, vs := range md {
		if strings.EqualFold(field, r.field) {
			values = append(values, vs...)
		}
	}
	return values
}

// Set is a mutable collection of rules guarded by a single lock, so rules
// can be added or removed from one goroutine while another evaluates.
// Matches copies the rules under the lock and evaluates outside it, so an
// evaluation racing with a mutation may observe some rules from before the
// mutation and some from after. This relaxed consistency is deliberate:
// live reconfiguration never blocks in-flight evaluations.
type Set struct {
	mu    sync.Mutex
	rules []Rule
}

// NewSet creates a rule set with the given initial rules.
func NewSet(rules ...Rule) *Set {
	s := &Set{}
	s.Add(rules...)
	return s
}

// Add appends one or more rules, preserving insertion order.
func (s *Set) Add(rules ...Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rules...)
}

// Remove deletes the first rule equal to the given one and reports whether
// the set contained it.
func (s *Set) Remove(rule Rule) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rules {
		if r.Equal(rule) {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveField deletes all rules on the given field and returns how many were
// removed. Field-name comparison follows each rule's own value
// case-sensitivity flag: a case-sensitive rule is removed only on an exact
// name match, a case-insensitive rule on a case-insensitive one. The
// asymmetry with Remove is historical and preserved on purpose.
func (s *Set) RemoveField(field string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	kept := s.rules[:0]
	for _, r := range s.rules {
		match := r.caseSensitive && r.field == field ||
			!r.caseSensitive && strings.EqualFold(r.field, field)
		if match {
			count++
			continue
		}
		kept = append(kept, r)
	}
	s.rules = kept
	return count
}

// Clear removes all rules.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = nil
}

// Len returns the number of rules in the set.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rules)
}

// Rules returns a copy of the rules in insertion order.
func (s *Set) Rules() []Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Rule(nil), s.rules...)
}

// Matches reports whether the document metadata satisfies the set: an empty
// set matches everything, a non-empty set matches when any rule does.
func (s *Set) Matches(md document.Metadata) bool {
	rules := s.Rules()
	if len(rules) == 0 {
		return true
	}
	for _, r := range rules {
		if r.Matches(md) {
			return true
		}
	}
	return false
}
