// Package domain defines the authorization domain models: capabilities,
// capability sets, and the identity claims carried by signed tokens.
// Implements capability-based access control over colon-delimited resource
// paths with wildcard matching and constrained grants.
package domain

// Action defines the types of operations that can be performed on resources.
// Actions are used in capability grants to control what an identity may do.
type Action string

const (
	// ReadAction allows reading resource data.
	ReadAction Action = "read"

	// WriteAction allows creating or updating resource data.
	WriteAction Action = "write"

	// DeleteAction allows removing resource data.
	DeleteAction Action = "delete"

	// AdminAction allows administrative operations on a resource.
	AdminAction Action = "admin"

	// UseAction allows invoking a resource (e.g., running an AI model).
	UseAction Action = "use"

	// WildcardAction matches any requested action.
	WildcardAction Action = "*"
)

// WildcardResource matches any requested resource.
const WildcardResource = "*"

// UserType classifies the identity carried by a token.
type UserType string

const (
	// TenantUser is a regular end user scoped to a single tenant.
	TenantUser UserType = "tenant_user"

	// TenantAdmin administers a single tenant.
	TenantAdmin UserType = "tenant_admin"

	// SuperAdmin is a platform-level administrator with no tenant scope.
	SuperAdmin UserType = "super_admin"
)

// Valid reports whether the user type is one of the known values.
func (u UserType) Valid() bool {
	switch u {
	case TenantUser, TenantAdmin, SuperAdmin:
		return true
	}
	return false
}
