package repository

import "strings"

// Page is a limit/offset window. Limit <= 0 returns all rows.
type Page struct {
	Limit  int
	Offset int
}

// UserFilter narrows user listings. Empty fields are not applied.
type UserFilter struct {
	Role   string
	Status string
	Search string
	Page
}

// ProductFilter narrows product listings. Search matches name or description, case-insensitively.
type ProductFilter struct {
	CategorySlug string
	Status       string
	Search       string
	Page
}

// BulletinFilter narrows bulletin listings.
type BulletinFilter struct {
	Type   string
	Status string
	Search string
	Page
}

// ContactFilter narrows contact submission listings.
type ContactFilter struct {
	Status string
	Page
}

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	Action   string
	EntityID string
	Page
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches s as a literal substring. Use it with ESCAPE '\'.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
