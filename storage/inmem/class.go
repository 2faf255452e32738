package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/class"
)

type classRepository struct {
	db *DB
}

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db}
}

func (repo *classRepository) query() []class.Class {
	classes := make([]class.Class, 0, len(repo.db.classes))
	for _, c := range repo.db.classes {
		classes = append(classes, *c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes
}

func (repo *classRepository) CreateClass(_ context.Context, cls *class.Class) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cls.ID = newID()
	row := *cls
	repo.db.classes[row.ID] = &row

	for _, usrID := range row.TeacherIDs {
		if usr, ok := repo.db.users[usrID]; ok {
			usr.ClassIDs = core.AddID(usr.ClassIDs, row.ID)
		}
	}
	for _, stdID := range row.StudentIDs {
		repo.moveStudentLocked(stdID, row.ID)
	}
	return nil
}

func (repo *classRepository) QueryAllClasses(_ context.Context) ([]class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *classRepository) GetClassByID(_ context.Context, id string) (class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) GetClassesByTeacher(_ context.Context, teacherID string) ([]class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var classes []class.Class
	for _, cls := range repo.query() {
		if cls.IsMaster() {
			continue
		}
		if core.ContainsID(cls.TeacherIDs, teacherID) {
			classes = append(classes, cls)
		}
	}
	return classes, nil
}

func (repo *classRepository) GetClassesByStudent(_ context.Context, studentID string) ([]class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var classes []class.Class
	for _, cls := range repo.query() {
		if cls.IsMaster() {
			continue
		}
		if core.ContainsID(cls.StudentIDs, studentID) {
			classes = append(classes, cls)
		}
	}
	return classes, nil
}

func (repo *classRepository) UpdateClass(_ context.Context, id string, uc class.UpdateClass) (class.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origCls, ok := repo.db.classes[id]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}

	// only save set fields
	origCls.Name = uc.Name
	if uc.TeacherIDs != nil {
		added, removed := core.DiffIDs(origCls.TeacherIDs, *uc.TeacherIDs)
		for _, usrID := range added {
			if usr, ok := repo.db.users[usrID]; ok {
				usr.ClassIDs = core.AddID(usr.ClassIDs, id)
			}
		}
		for _, usrID := range removed {
			if usr, ok := repo.db.users[usrID]; ok {
				usr.ClassIDs = core.RemoveID(usr.ClassIDs, id)
			}
		}
		origCls.TeacherIDs = core.CopyIDs(*uc.TeacherIDs)
	}
	// the school-wide class accepts no real enrollment
	if uc.StudentIDs != nil && !origCls.IsMaster() {
		added, removed := core.DiffIDs(origCls.StudentIDs, *uc.StudentIDs)
		for _, stdID := range removed {
			if std, ok := repo.db.students[stdID]; ok && std.ClassID == id {
				std.ClassID = ""
			}
		}
		for _, stdID := range added {
			repo.moveStudentLocked(stdID, id)
		}
		origCls.StudentIDs = core.CopyIDs(*uc.StudentIDs)
	}
	origCls.UpdatedAt = nowFunc().UTC()
	return *origCls, nil
}

func (repo *classRepository) DeleteClass(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if class.IsMaster(id) {
		return class.ErrMasterClassProtected
	}
	cls, ok := repo.db.classes[id]
	if !ok {
		return class.ErrNotFound
	}

	for _, usrID := range cls.TeacherIDs {
		if usr, ok := repo.db.users[usrID]; ok {
			usr.ClassIDs = core.RemoveID(usr.ClassIDs, id)
		}
	}
	for _, stdID := range cls.StudentIDs {
		if std, ok := repo.db.students[stdID]; ok && std.ClassID == id {
			std.ClassID = ""
		}
	}
	delete(repo.db.classes, id)
	return nil
}

// moveStudentLocked places a student in a class, pulling them out of their
// previous one first. Callers must hold the write lock.
func (repo *classRepository) moveStudentLocked(studentID, classID string) {
	std, ok := repo.db.students[studentID]
	if !ok {
		return
	}
	if std.ClassID != "" && std.ClassID != classID {
		if prev, ok := repo.db.classes[std.ClassID]; ok {
			prev.StudentIDs = core.RemoveID(prev.StudentIDs, studentID)
		}
	}
	std.ClassID = classID
	if cls, ok := repo.db.classes[classID]; ok {
		cls.StudentIDs = core.AddID(cls.StudentIDs, studentID)
	}
}
