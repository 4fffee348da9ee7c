// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package authz

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/models"
)

//go:embed model.conf
var embeddedModel string

const (
	userPrefix = "user:"
	rolePrefix = "role:"

	ruleMatchFunc = "ruleMatch"
)

// UserPrincipal returns the casbin subject for an account.
func UserPrincipal(account string) string { return userPrefix + account }

// RolePrincipal returns the casbin subject for a role name.
func RolePrincipal(role string) string { return rolePrefix + role }

// SnapshotStatus describes the installed policy generation.
type SnapshotStatus struct {
	Version       uint64    `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	Roles         int       `json:"roles"`
	Users         int       `json:"users"`
	Rules         int       `json:"rules"`
	SkippedRules  int       `json:"skipped_rules"`
	BypassEnabled bool      `json:"bypass_enabled"`
}

// snapshot is one immutable generation of compiled policy. It is built off
// to the side and swapped in whole; nothing mutates it after buildSnapshot
// returns.
type snapshot struct {
	version   uint64
	createdAt time.Time

	enforcer *casbin.SyncedEnforcer
	compiled map[string]*CompiledRule // ruleKey(method, pattern) -> rule
	accounts map[string]string        // account -> role name

	roles   int
	rules   int
	skipped int
}

// buildSnapshot compiles roles and users into a new generation. Malformed
// rules are logged and skipped; only a broken casbin model fails the build.
func buildSnapshot(version uint64, roles []models.Role, users []models.User) (*snapshot, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	s := &snapshot{
		version:   version,
		createdAt: time.Now(),
		enforcer:  enforcer,
		compiled:  make(map[string]*CompiledRule),
		accounts:  make(map[string]string, len(users)),
		roles:     len(roles),
	}
	enforcer.AddFunction(ruleMatchFunc, s.ruleMatch)

	for _, role := range roles {
		subject := RolePrincipal(role.Name)
		for _, rule := range role.Permissions {
			compiled, err := CompileRule(rule)
			if err != nil {
				s.skipped++
				AuthzPatternsSkippedTotal.Inc()
				logging.Warn().Err(err).
					Str("role", role.Name).
					Str("method", rule.Method).
					Str("path", rule.Path).
					Msg("Skipping malformed permission rule")
				continue
			}
			s.compiled[ruleKey(compiled.Method, compiled.Pattern.String())] = compiled

			added, err := enforcer.AddPolicy(subject, compiled.Method, compiled.Pattern.String())
			if err != nil {
				return nil, fmt.Errorf("failed to add policy for role %s: %w", role.Name, err)
			}
			if added {
				s.rules++
			}
		}
	}

	for _, user := range users {
		s.accounts[user.Account] = user.RoleName
		if _, err := enforcer.AddGroupingPolicy(UserPrincipal(user.Account), RolePrincipal(user.RoleName)); err != nil {
			return nil, fmt.Errorf("failed to add role assignment for %s: %w", user.Account, err)
		}
	}

	return s, nil
}

// emptySnapshot is the generation installed before the first load.
func emptySnapshot() (*snapshot, error) {
	return buildSnapshot(0, nil, nil)
}

func ruleKey(method, pattern string) string {
	return method + " " + pattern
}

// ruleMatch is the casbin matcher function
// ruleMatch(r.method, r.path, p.method, p.path). It defers to
// CompiledRule.Matches.
func (s *snapshot) ruleMatch(args ...interface{}) (interface{}, error) {
	if len(args) != 4 {
		return false, fmt.Errorf("%s: expected 4 arguments, got %d", ruleMatchFunc, len(args))
	}
	strs := make([]string, len(args))
	for i, arg := range args {
		str, ok := arg.(string)
		if !ok {
			return false, fmt.Errorf("%s: argument %d is %T, not string", ruleMatchFunc, i, arg)
		}
		strs[i] = str
	}
	rule, ok := s.compiled[ruleKey(strs[2], strs[3])]
	if !ok {
		return false, nil
	}
	return rule.Matches(strs[0], strs[1]), nil
}

// check evaluates one request against this generation. The returned role is
// empty for unknown accounts.
func (s *snapshot) check(account, method, path string) (allowed bool, role string, err error) {
	role, ok := s.accounts[account]
	if !ok {
		return false, "", nil
	}
	allowed, err = s.enforcer.Enforce(UserPrincipal(account), method, path)
	if err != nil {
		return false, role, err
	}
	return allowed, role, nil
}

func (s *snapshot) status() SnapshotStatus {
	return SnapshotStatus{
		Version:      s.version,
		CreatedAt:    s.createdAt,
		Roles:        s.roles,
		Users:        len(s.accounts),
		Rules:        s.rules,
		SkippedRules: s.skipped,
	}
}
