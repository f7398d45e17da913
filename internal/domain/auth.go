package domain

// AuthService validates bearer tokens presented to the annotation backend.
type AuthService interface {
	ValidateToken(token string) (*SupabaseUser, error)
}
