package user

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
)

// Roles. A user has exactly one.
const (
	RoleAdmin       = "ADMIN"
	RoleTeacher     = "TEACHER"
	RoleParent      = "PARENT"
	RoleStudentUser = "STUDENT_USER"
)

// DefaultAvatarURL is used whenever no avatar is provided.
const DefaultAvatarURL = "https://picsum.photos/seed/avatar/100/100"

var (
	AllRoles = []string{RoleAdmin, RoleTeacher, RoleParent, RoleStudentUser}

	roleDisplayNames = map[string]string{
		RoleAdmin:       "Administrator",
		RoleTeacher:     "Teacher",
		RoleParent:      "Parent",
		RoleStudentUser: "Student User",
	}
)

func RoleDisplayName(role string) string {
	if name, ok := roleDisplayNames[role]; ok {
		return name
	}
	return role
}

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	AvatarURL      string    `json:"avatar_url"`
	PasswordHash   []byte    `json:"-"`
	HasSetPassword bool      `json:"has_set_password"`

	// ClassIDs are the classes taught; TEACHER only.
	ClassIDs []string `json:"class_ids,omitempty"`
	// ChildStudentIDs are the linked children; PARENT only.
	ChildStudentIDs []string `json:"child_student_ids,omitempty"`
	// StudentID is the back-link to the Student record; STUDENT_USER only.
	StudentID string `json:"student_id,omitempty"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.HasSetPassword = true
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool       { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool     { return u.Role == RoleTeacher }
func (u *User) IsParent() bool      { return u.Role == RoleParent }
func (u *User) IsStudentUser() bool { return u.Role == RoleStudentUser }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,role"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`

	ClassIDs        []string `json:"class_ids"`         // TEACHER only
	ChildStudentIDs []string `json:"child_student_ids"` // PARENT only
	StudentID       string   `json:"student_id"`        // STUDENT_USER only
}

func (nu *NewUser) Validate(ctx context.Context, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing
// User. A nil link slice means "leave the links untouched"; a non-nil one
// replaces the set and re-mirrors the affected records.
type UpdateUser struct {
	Name      string  `json:"name"`
	Email     string  `json:"email" validate:"omitempty,email"`
	AvatarURL *string `json:"avatar_url"`

	ClassIDs        *[]string `json:"class_ids"`         // TEACHER only
	ChildStudentIDs *[]string `json:"child_student_ids"` // PARENT only
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, svc Service) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	// links stay role-conditional on updates too
	if uu.ClassIDs != nil && len(*uu.ClassIDs) > 0 && origUsr.Role != RoleTeacher {
		return core.NewValidationError(errors.New(classIDsForbiddenText))
	}
	if uu.ChildStudentIDs != nil && len(*uu.ChildStudentIDs) > 0 && origUsr.Role != RoleParent {
		return core.NewValidationError(errors.New(childIDsForbiddenText))
	}
	return svc.CheckEmailUniqueness(ctx, uu.Email, origUsr)
}

// SetPassword carries a password being set by a user; Name and Email are the
// user's attributes checked for similarity by the password policy.
type SetPassword struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	Name  string `json:"-"`
	Email string `json:"-"`
}

func (sp SetPassword) Validate() error { return core.Validate.Struct(sp) }

// CreatedUser is returned by Service.Create: the new User plus the
// invitation code generated for its first login.
type CreatedUser struct {
	User           User   `json:"user"`
	InvitationCode string `json:"invitation_code,omitempty"`
}

// InvitationCode maps a code to exactly one (user, role) pair for first-login
// bootstrap. Every generated code is also retained in an append-only history.
type InvitationCode struct {
	Code      string    `json:"code"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"` // UTC
}
