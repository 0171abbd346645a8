package model

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is the identity reported by the host context provider.
type User struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Login       string   `json:"loginOrEmail"`
	Role        UserRole `json:"role"`
}
