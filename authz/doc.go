// Package authz provides permission checks for role-based access.
//
// Permissions use a "resource:action" format with wildcard patterns, so
// "article:*" matches "article:moderate".
//
//	checker := authz.NewMapChecker(map[string][]string{
//	    "admin":  {"*:*"},
//	    "editor": {"article:*"},
//	    "viewer": {"*:read"},
//	})
//
//	allowed := checker.HasPermission("admin", "article:moderate") // true
package authz
