// internal/directory/implementation.go
package directory

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/time/rate"

	"fitclub/internal/apperr"
	"fitclub/internal/auth"
	"fitclub/internal/authz"
)

var (
	// ErrInvalidCredentials is deliberately undifferentiated: a missing
	// member, a member without a stored credential, and a wrong password
	// all look the same to the caller.
	ErrInvalidCredentials = apperr.Unauthorized("INVALID_CREDENTIALS", "invalid credentials")

	errRateLimited = apperr.New("RATE_LIMITED", "too many requests, slow down", http.StatusTooManyRequests)

	allDigits = regexp.MustCompile(`^\d+$`)
)

const uniqueViolation = "23505"

// service implements the Service interface.
type service struct {
	db          *sql.DB
	jwtSecret   string
	rateLimiter *rate.Limiter
}

// NewService creates a new directory service instance.
func NewService(db *sql.DB, jwtSecret string) Service {
	return &service{
		db:          db,
		jwtSecret:   jwtSecret,
		rateLimiter: rate.NewLimiter(rate.Every(1*time.Minute), 5), // 5 requests per minute
	}
}

// Register creates a MEMBER-role record and issues a session token.
func (s *service) Register(ctx context.Context, name, phone, password string) (*AuthResult, error) {
	if !s.rateLimiter.Allow() {
		return nil, errRateLimited
	}

	var existing uuid.UUID
	err := s.db.QueryRowContext(ctx, `SELECT id FROM members WHERE phone = $1`, phone).Scan(&existing)
	if err == nil {
		return nil, apperr.Conflict("DUPLICATE_PHONE", "a member with this phone number already exists")
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}

	credential, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &Member{
		ID:    uuid.New(),
		Name:  name,
		Phone: phone,
		Role:  authz.RoleMember,
	}
	query := `
		INSERT INTO members (id, name, phone, password, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err = s.db.QueryRowContext(ctx, query, member.ID, member.Name, member.Phone, credential, member.Role).
		Scan(&member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		// The phone check above races with concurrent registrations; the
		// unique constraint is the real guard.
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("DUPLICATE_PHONE", "a member with this phone number already exists")
		}
		return nil, fmt.Errorf("failed to insert member: %w", err)
	}

	token, err := auth.IssueToken(member.ID, member.Role, member.Phone, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Member: member, Token: token}, nil
}

// Login authenticates by phone or username. An all-digits identifier is a
// phone number, anything else a username.
func (s *service) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	if !s.rateLimiter.Allow() {
		return nil, errRateLimited
	}

	column := "username"
	if allDigits.MatchString(identifier) {
		column = "phone"
	}

	query := fmt.Sprintf(`
		SELECT id, name, phone, username, password, role, created_at, updated_at
		FROM members
		WHERE %s = $1
	`, column)

	member := &Member{}
	var username, credential sql.NullString
	err := s.db.QueryRowContext(ctx, query, identifier).Scan(
		&member.ID,
		&member.Name,
		&member.Phone,
		&username,
		&credential,
		&member.Role,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up member: %w", err)
	}
	member.Username = username.String

	if !credential.Valid || !auth.VerifyPassword(password, credential.String) {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(member.ID, member.Role, member.Phone, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Member: member, Token: token}, nil
}

// PromoteToLeader sets the target's role to LEADER. The acting member's
// role is re-read from the directory rather than trusted from the token,
// since roles can change after token issuance.
func (s *service) PromoteToLeader(ctx context.Context, targetID, actingID uuid.UUID) (*Member, error) {
	acting, err := s.GetMember(ctx, actingID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireAnyOf(acting.Role, authz.AdminOnly); err != nil {
		return nil, err
	}

	return s.setRole(ctx, targetID, authz.RoleLeader)
}

// Demote sets the target's role back to MEMBER.
func (s *service) Demote(ctx context.Context, targetID uuid.UUID) (*Member, error) {
	return s.setRole(ctx, targetID, authz.RoleMember)
}

func (s *service) setRole(ctx context.Context, targetID uuid.UUID, role authz.Role) (*Member, error) {
	member, err := s.GetMember(ctx, targetID)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE members
		SET role = $1, updated_at = NOW()
		WHERE id = $2
	`
	if _, err := s.db.ExecContext(ctx, query, role, targetID); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	member.Role = role
	return member, nil
}

// CreateAdmin creates an ADMIN account. Only a SUPER_ADMIN may do this;
// the creator's role comes from the directory, not the token.
func (s *service) CreateAdmin(ctx context.Context, name, username, phone, password string, creatorID uuid.UUID) (*AuthResult, error) {
	creator, err := s.GetMember(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireAnyOf(creator.Role, authz.SuperAdminOnly); err != nil {
		return nil, err
	}

	var existing uuid.UUID
	err = s.db.QueryRowContext(ctx, `SELECT id FROM members WHERE username = $1`, username).Scan(&existing)
	if err == nil {
		return nil, apperr.Conflict("DUPLICATE_USERNAME", "a member with this username already exists")
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	credential, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &Member{
		ID:       uuid.New(),
		Name:     name,
		Phone:    phone,
		Username: username,
		Role:     authz.RoleAdmin,
	}
	query := `
		INSERT INTO members (id, name, phone, username, password, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err = s.db.QueryRowContext(ctx, query, member.ID, member.Name, member.Phone, member.Username, credential, member.Role).
		Scan(&member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("DUPLICATE_USERNAME", "a member with this username already exists")
		}
		return nil, fmt.Errorf("failed to insert admin: %w", err)
	}

	token, err := auth.IssueToken(member.ID, member.Role, member.Phone, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Member: member, Token: token}, nil
}

// GetMember retrieves a member by id.
func (s *service) GetMember(ctx context.Context, id uuid.UUID) (*Member, error) {
	query := `
		SELECT id, name, phone, username, role, created_at, updated_at
		FROM members
		WHERE id = $1
	`
	member := &Member{}
	var username sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&member.ID,
		&member.Name,
		&member.Phone,
		&username,
		&member.Role,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("MEMBER_NOT_FOUND", "member not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	member.Username = username.String
	return member, nil
}

// ListMembers returns the admin roster view. SUPER_ADMIN accounts are
// excluded from the listing.
func (s *service) ListMembers(ctx context.Context) ([]*Member, error) {
	query := `
		SELECT id, name, phone, username, role, created_at, updated_at
		FROM members
		WHERE role <> $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, authz.RoleSuperAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member := &Member{}
		var username sql.NullString
		if err := rows.Scan(&member.ID, &member.Name, &member.Phone, &username, &member.Role, &member.CreatedAt, &member.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		member.Username = username.String
		members = append(members, member)
	}
	return members, rows.Err()
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == uniqueViolation
	}
	return false
}
