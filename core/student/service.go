package student

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("student not found")
	ErrProfileNeedsEmail = errors.New("an email is required to create a student account")
)

type (
	// Repository provides access to the students storage. Implementations
	// must keep the student's class membership and parent links mirrored on
	// every write.
	Repository interface {
		CreateStudent(ctx context.Context, std *Student) error
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentsByClass(ctx context.Context, classID string) ([]Student, error)
		GetStudentsByParent(ctx context.Context, parentID string) ([]Student, error)
		UpdateStudent(ctx context.Context, id string, us UpdateStudent) (Student, error)
		// AttachUserProfile records the student's login account back-link.
		AttachUserProfile(ctx context.Context, studentID, userID string) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, ns NewStudent) (CreatedStudent, error)
		QueryAll(ctx context.Context) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		ByClass(ctx context.Context, classID string) ([]Student, error)
		ByParent(ctx context.Context, parentID string) ([]Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		// ProvisionProfile creates a login account for an existing student
		// that does not have one yet.
		ProvisionProfile(ctx context.Context, studentID, email string) (CreatedStudent, error)
		Delete(ctx context.Context, id string) error
	}

	// CreatedStudent is returned by Service.Create: the new Student plus the
	// invitation code of its login account when one was provisioned.
	CreatedStudent struct {
		Student        Student `json:"student"`
		InvitationCode string  `json:"invitation_code,omitempty"`
	}

	service struct {
		repo    Repository
		userSvc user.Service
		log     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, userSvc user.Service, log core.Logger) Service {
	return &service{repo: repo, userSvc: userSvc, log: log}
}

func (s service) Create(ctx context.Context, ns NewStudent) (CreatedStudent, error) {
	if err := ns.Validate(ctx, s.userSvc); err != nil {
		return CreatedStudent{}, err
	}

	if ns.AvatarURL == "" {
		ns.AvatarURL = user.DefaultAvatarURL
	}
	now := nowFunc().UTC()
	std := Student{
		Name:      ns.Name,
		AvatarURL: ns.AvatarURL,
		ClassID:   ns.ClassID,
		ParentIDs: core.CopyIDs(ns.ParentIDs),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateStudent(ctx, &std); err != nil {
		return CreatedStudent{}, errors.Wrap(err, "creating student")
	}

	if !ns.CreateProfile {
		return CreatedStudent{Student: std}, nil
	}
	return s.provisionProfile(ctx, std, ns.Email)
}

func (s service) QueryAll(ctx context.Context) ([]Student, error) {
	return s.repo.QueryAllStudents(ctx)
}

func (s service) GetByID(ctx context.Context, id string) (Student, error) {
	return s.repo.GetStudentByID(ctx, id)
}

// ByClass returns the roster of classID; the master class has no roster so
// it always yields an empty result.
func (s service) ByClass(ctx context.Context, classID string) ([]Student, error) {
	return s.repo.GetStudentsByClass(ctx, classID)
}

func (s service) ByParent(ctx context.Context, parentID string) ([]Student, error) {
	return s.repo.GetStudentsByParent(ctx, parentID)
}

func (s service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	origStd, err := s.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if err = us.Validate(ctx, origStd); err != nil {
		return Student{}, err
	}
	return s.repo.UpdateStudent(ctx, id, us)
}

func (s service) ProvisionProfile(ctx context.Context, studentID, email string) (CreatedStudent, error) {
	std, err := s.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return CreatedStudent{}, err
	}
	if std.HasUserProfile {
		return CreatedStudent{Student: std}, nil
	}
	if email = core.CleanString(email, true /* lower */); email == "" {
		return CreatedStudent{}, ErrProfileNeedsEmail
	}
	return s.provisionProfile(ctx, std, email)
}

// Delete removes the student; the repository cascades to their login
// account if one was provisioned.
func (s service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteStudent(ctx, id)
}

func (s service) provisionProfile(ctx context.Context, std Student, email string) (CreatedStudent, error) {
	created, err := s.userSvc.Create(ctx, user.NewUser{
		Name:      std.Name,
		Email:     email,
		Role:      user.RoleStudentUser,
		AvatarURL: std.AvatarURL,
		StudentID: std.ID,
	})
	if err != nil {
		return CreatedStudent{}, errors.Wrap(err, "provisioning student account")
	}
	std, err = s.repo.AttachUserProfile(ctx, std.ID, created.User.ID)
	if err != nil {
		return CreatedStudent{}, err
	}
	return CreatedStudent{Student: std, InvitationCode: created.InvitationCode}, nil
}
