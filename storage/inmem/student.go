package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/student"
)

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students
}

func (repo *studentRepository) CreateStudent(_ context.Context, std *student.Student) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std.ID = newID()
	row := *std
	repo.db.students[row.ID] = &row

	// the school-wide class accepts no real enrollment
	if row.ClassID != "" && !class.IsMaster(row.ClassID) {
		if cls, ok := repo.db.classes[row.ClassID]; ok {
			cls.StudentIDs = core.AddID(cls.StudentIDs, row.ID)
		}
	}
	for _, usrID := range row.ParentIDs {
		if usr, ok := repo.db.users[usrID]; ok {
			usr.ChildStudentIDs = core.AddID(usr.ChildStudentIDs, row.ID)
		}
	}
	return nil
}

func (repo *studentRepository) QueryAllStudents(_ context.Context) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentsByClass(_ context.Context, classID string) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	// the school-wide class has no roster
	if class.IsMaster(classID) {
		return nil, nil
	}
	var students []student.Student
	for _, std := range repo.query() {
		if std.ClassID == classID {
			students = append(students, std)
		}
	}
	return students, nil
}

func (repo *studentRepository) GetStudentsByParent(_ context.Context, parentID string) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var students []student.Student
	for _, std := range repo.query() {
		if core.ContainsID(std.ParentIDs, parentID) {
			students = append(students, std)
		}
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, id string, us student.UpdateStudent) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origStd, ok := repo.db.students[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}

	// only save set fields
	origStd.Name = us.Name
	if us.AvatarURL != nil {
		origStd.AvatarURL = *us.AvatarURL
	}
	if us.ClassID != nil && *us.ClassID != origStd.ClassID {
		if origStd.ClassID != "" {
			if prev, ok := repo.db.classes[origStd.ClassID]; ok {
				prev.StudentIDs = core.RemoveID(prev.StudentIDs, id)
			}
		}
		origStd.ClassID = *us.ClassID
		// no roster on the school-wide class
		if origStd.ClassID != "" && !class.IsMaster(origStd.ClassID) {
			if cls, ok := repo.db.classes[origStd.ClassID]; ok {
				cls.StudentIDs = core.AddID(cls.StudentIDs, id)
			}
		}
	}
	if us.ParentIDs != nil {
		added, removed := core.DiffIDs(origStd.ParentIDs, *us.ParentIDs)
		for _, usrID := range added {
			if usr, ok := repo.db.users[usrID]; ok {
				usr.ChildStudentIDs = core.AddID(usr.ChildStudentIDs, id)
			}
		}
		for _, usrID := range removed {
			if usr, ok := repo.db.users[usrID]; ok {
				usr.ChildStudentIDs = core.RemoveID(usr.ChildStudentIDs, id)
			}
		}
		origStd.ParentIDs = core.CopyIDs(*us.ParentIDs)
	}
	origStd.UpdatedAt = nowFunc().UTC()
	return *origStd, nil
}

func (repo *studentRepository) AttachUserProfile(_ context.Context, studentID, userID string) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std, ok := repo.db.students[studentID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	std.UserID = userID
	std.HasUserProfile = true
	std.UpdatedAt = nowFunc().UTC()
	return *std, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std, ok := repo.db.students[id]
	if !ok {
		return student.ErrNotFound
	}

	if std.ClassID != "" {
		if cls, ok := repo.db.classes[std.ClassID]; ok {
			cls.StudentIDs = core.RemoveID(cls.StudentIDs, id)
		}
	}
	for _, usrID := range std.ParentIDs {
		if usr, ok := repo.db.users[usrID]; ok {
			usr.ChildStudentIDs = core.RemoveID(usr.ChildStudentIDs, id)
		}
	}
	// cascade to the student's login account
	if std.UserID != "" {
		repo.db.deleteUserLocked(std.UserID)
	}
	delete(repo.db.students, id)
	return nil
}
