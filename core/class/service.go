package class

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound             = errors.New("class not found")
	ErrMasterClassProtected = errors.New("the school-wide class cannot be deleted")
)

type (
	// Repository provides access to the classes storage. Implementations must
	// keep class rosters and the matching user/student links consistent on
	// every write, and must refuse to delete the master class.
	Repository interface {
		CreateClass(ctx context.Context, cls *Class) error
		QueryAllClasses(ctx context.Context) ([]Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		GetClassesByTeacher(ctx context.Context, teacherID string) ([]Class, error)
		GetClassesByStudent(ctx context.Context, studentID string) ([]Class, error)
		UpdateClass(ctx context.Context, id string, uc UpdateClass) (Class, error)
		DeleteClass(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, nc NewClass) (Class, error)
		QueryAll(ctx context.Context) ([]Class, error)
		GetByID(ctx context.Context, id string) (Class, error)
		ByTeacher(ctx context.Context, teacherID string) ([]Class, error)
		ByStudent(ctx context.Context, studentID string) ([]Class, error)
		Update(ctx context.Context, id string, uc UpdateClass) (Class, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
		log  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, log core.Logger) Service {
	return &service{repo: repo, log: log}
}

func (s service) Create(ctx context.Context, nc NewClass) (Class, error) {
	if err := nc.Validate(); err != nil {
		return Class{}, err
	}
	now := nowFunc().UTC()
	cls := Class{
		Name:       nc.Name,
		TeacherIDs: core.CopyIDs(nc.TeacherIDs),
		StudentIDs: core.CopyIDs(nc.StudentIDs),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateClass(ctx, &cls); err != nil {
		return Class{}, errors.Wrap(err, "creating class")
	}
	return cls, nil
}

func (s service) QueryAll(ctx context.Context) ([]Class, error) {
	return s.repo.QueryAllClasses(ctx)
}

func (s service) GetByID(ctx context.Context, id string) (Class, error) {
	return s.repo.GetClassByID(ctx, id)
}

// ByTeacher returns the classes taught by teacherID; the master class is
// excluded since it has no roster.
func (s service) ByTeacher(ctx context.Context, teacherID string) ([]Class, error) {
	return s.repo.GetClassesByTeacher(ctx, teacherID)
}

func (s service) ByStudent(ctx context.Context, studentID string) ([]Class, error) {
	return s.repo.GetClassesByStudent(ctx, studentID)
}

func (s service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	origCls, err := s.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if err = uc.Validate(ctx, origCls); err != nil {
		return Class{}, err
	}
	if origCls.IsMaster() && uc.Name != origCls.Name {
		s.log.Warn("renaming the school-wide class", "id", id, "name", uc.Name)
	}
	return s.repo.UpdateClass(ctx, id, uc)
}

func (s service) Delete(ctx context.Context, id string) error {
	if IsMaster(id) {
		return ErrMasterClassProtected
	}
	return s.repo.DeleteClass(ctx, id)
}
