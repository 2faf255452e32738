package class

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core"
)

// MasterClassID identifies the school-wide class every user belongs to
// implicitly. It hosts the global feed and cannot be deleted.
const (
	MasterClassID   = "master-class-global"
	MasterClassName = "All School (Global Feed)"
)

func IsMaster(id string) bool { return id == MasterClassID }

var nowFunc = time.Now // mockable

type Class struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// TeacherIDs mirror user.User.ClassIDs.
	TeacherIDs []string `json:"teacher_ids"`
	// StudentIDs mirror student.Student.ClassID.
	StudentIDs []string `json:"student_ids"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (c *Class) IsMaster() bool { return IsMaster(c.ID) }

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name       string   `json:"name" validate:"required"`
	TeacherIDs []string `json:"teacher_ids"`
	StudentIDs []string `json:"student_ids"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing
// Class. A nil roster slice means "leave the roster untouched"; a non-nil one
// replaces the set and re-mirrors the affected records.
type UpdateClass struct {
	Name       string    `json:"name"`
	TeacherIDs *[]string `json:"teacher_ids"`
	StudentIDs *[]string `json:"student_ids"`
}

func (uc *UpdateClass) Validate(_ context.Context, origCls Class) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = origCls.Name
	}
	return core.Validate.Struct(uc)
}
