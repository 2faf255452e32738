package student

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type Student struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`

	// ClassID mirrors class.Class.StudentIDs; a student belongs to at most
	// one class at a time.
	ClassID string `json:"class_id"`
	// ParentIDs mirror user.User.ChildStudentIDs.
	ParentIDs []string `json:"parent_ids"`

	// UserID links the student's own login account, if one was provisioned.
	UserID         string `json:"user_id,omitempty"`
	HasUserProfile bool   `json:"has_user_profile"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

var nowFunc = time.Now // mockable

// NewStudent contains information needed to create a new Student. When
// CreateProfile is set a login account is provisioned alongside the record,
// which requires an Email.
type NewStudent struct {
	Name      string   `json:"name" validate:"required"`
	AvatarURL string   `json:"avatar_url" validate:"omitempty,url"`
	ClassID   string   `json:"class_id"`
	ParentIDs []string `json:"parent_ids"`

	CreateProfile bool   `json:"create_profile"`
	Email         string `json:"email" validate:"omitempty,email"`
}

func (ns *NewStudent) Validate(ctx context.Context, userSvc user.Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	if ns.CreateProfile {
		if ns.Email == "" {
			return ErrProfileNeedsEmail
		}
		return userSvc.CheckEmailUniqueness(ctx, ns.Email)
	}
	return nil
}

// UpdateStudent defines what information may be provided to modify an
// existing Student. Nil fields are left untouched; a non-nil ClassID moves
// the student between classes and a non-nil ParentIDs replaces the parent
// links, re-mirroring the affected records.
type UpdateStudent struct {
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url"`
	ClassID   *string   `json:"class_id"`
	ParentIDs *[]string `json:"parent_ids"`
}

func (us *UpdateStudent) Validate(_ context.Context, origStd Student) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = origStd.Name
	}
	return core.Validate.Struct(us)
}
