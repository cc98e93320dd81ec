package domain

import (
	"slices"
	"strings"
	"time"
)

// ConstraintKind identifies the constraint variant attached to a capability.
// Constraints form a closed set so the matcher's behavior is exhaustively
// defined rather than best-effort over an open bag of keys.
type ConstraintKind string

const (
	// ConstraintNone indicates an unconstrained grant.
	ConstraintNone ConstraintKind = ""

	// ConstraintValidUntil bounds the grant to an absolute expiry timestamp.
	ConstraintValidUntil ConstraintKind = "valid_until"

	// ConstraintUsageLimit caps how often the grant may be exercised within a
	// window. The limit is exposed to callers for enforcement; the matcher
	// itself does not count usage.
	ConstraintUsageLimit ConstraintKind = "usage_limit"
)

// Constraint is a tagged variant restricting when a capability grant applies.
// The zero value is the unconstrained variant.
type Constraint struct {
	Kind ConstraintKind `json:"kind,omitempty"`

	// ValidUntil is the absolute expiry for ConstraintValidUntil grants.
	ValidUntil time.Time `json:"valid_until,omitzero"`

	// Window and MaxRequests describe a ConstraintUsageLimit budget
	// (e.g., at most MaxRequests per Window). Evaluated by the caller.
	Window      time.Duration `json:"window,omitempty"`
	MaxRequests int           `json:"max_requests,omitempty"`
}

// Satisfied reports whether the constraint permits use of the grant at the
// given time. A grant with an expired valid_until is treated as non-existent
// for the check, regardless of resource/action match. Usage limits are not
// enforced here beyond exposing the budget.
func (c Constraint) Satisfied(now time.Time) bool {
	switch c.Kind {
	case ConstraintValidUntil:
		return now.Before(c.ValidUntil)
	default:
		return true
	}
}

// Capability grants a set of actions on a colon-delimited resource pattern,
// optionally restricted by a constraint.
type Capability struct {
	Resource   string     `json:"resource"`
	Actions    []Action   `json:"actions"`
	Constraint Constraint `json:"constraint,omitzero"`
}

// matchResource checks if the requested resource matches the grant pattern.
// Both sides are split on ":"; a pattern segment of "*" matches the remaining
// segment and everything after it (the wildcard is suffix-absorbing), otherwise
// segments must match literally, left to right.
//
// Examples:
//   - "*" matches any resource
//   - "tenant:acme:*" matches "tenant:acme:conversations" and
//     "tenant:acme:conversations:123", but NOT "tenant:acme"
//   - "tenant:acme" matches only "tenant:acme"
func matchResource(pattern, resource string) bool {
	if pattern == WildcardResource {
		return resource != ""
	}

	patternParts := strings.Split(pattern, ":")
	resourceParts := strings.Split(resource, ":")

	for i, part := range patternParts {
		if part == "*" {
			// Wildcard absorbs the rest, but requires at least one
			// remaining segment.
			return len(resourceParts) > i
		}
		if i >= len(resourceParts) || part != resourceParts[i] {
			return false
		}
	}

	// Pattern exhausted without a wildcard: segment counts must agree.
	return len(resourceParts) == len(patternParts)
}

// matchAction checks if the requested action equals one of the grant's actions
// or the grant carries the wildcard action.
func matchAction(actions []Action, action Action) bool {
	return slices.Contains(actions, action) || slices.Contains(actions, WildcardAction)
}

// Matches reports whether this grant authorizes the requested resource and
// action at the given time.
func (c Capability) Matches(resource string, action Action, now time.Time) bool {
	if !c.Constraint.Satisfied(now) {
		return false
	}
	return matchResource(c.Resource, resource) && matchAction(c.Actions, action)
}

// IsSuperGrant reports whether the grant is the unconstrained
// resource:"*"/actions:["*"] grant that matches everything.
func (c Capability) IsSuperGrant() bool {
	return c.Resource == WildcardResource &&
		c.Constraint.Kind == ConstraintNone &&
		slices.Contains(c.Actions, WildcardAction)
}

// CapabilitySet is the full collection of grants embedded in an identity
// token. Order is irrelevant to semantics: any matching grant authorizes.
// The set is owned by the token that carries it and is immutable after
// issuance.
type CapabilitySet []Capability

// Authorizes reports whether any grant in the set matches both resource and
// action and passes constraint evaluation. There is no explicit-deny concept;
// absence of a matching grant is the only form of denial.
func (s CapabilitySet) Authorizes(resource string, action Action, now time.Time) bool {
	if resource == "" || action == "" {
		return false
	}

	// Short-circuit for the super-admin grant. Correctness does not depend
	// on this; any matching grant below would authorize too.
	for _, grant := range s {
		if grant.IsSuperGrant() {
			return true
		}
	}

	for _, grant := range s {
		if grant.Matches(resource, action, now) {
			return true
		}
	}
	return false
}

// NewCapabilitySet builds the default grant set for an authenticated identity
// based on its user type and tenant scope. Super admins receive the single
// match-everything grant; tenant identities are fenced to their tenant's
// resource subtree plus shared AI resources.
func NewCapabilitySet(userType UserType, tenantID string) CapabilitySet {
	switch userType {
	case SuperAdmin:
		return CapabilitySet{
			{Resource: WildcardResource, Actions: []Action{WildcardAction}},
		}
	case TenantAdmin:
		return CapabilitySet{
			{
				Resource: "tenant:" + tenantID + ":*",
				Actions:  []Action{ReadAction, WriteAction, DeleteAction, AdminAction},
			},
			{
				Resource: "ai_resource:*",
				Actions:  []Action{ReadAction, UseAction},
			},
		}
	default:
		return CapabilitySet{
			{
				Resource: "tenant:" + tenantID + ":*",
				Actions:  []Action{ReadAction, WriteAction},
			},
			{
				Resource: "ai_resource:*",
				Actions:  []Action{UseAction},
			},
		}
	}
}
