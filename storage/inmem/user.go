package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...user.User) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = true
	}
	for _, usr := range repo.db.users {
		if usr.Email == email && !excluded[usr.ID] {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr *user.User) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = newID()
	row := *usr
	repo.db.users[row.ID] = &row

	// mirror links onto the referenced records
	for _, clsID := range row.ClassIDs {
		if cls, ok := repo.db.classes[clsID]; ok {
			cls.TeacherIDs = core.AddID(cls.TeacherIDs, row.ID)
		}
	}
	for _, stdID := range row.ChildStudentIDs {
		if std, ok := repo.db.students[stdID]; ok {
			std.ParentIDs = core.AddID(std.ParentIDs, row.ID)
		}
	}
	return nil
}

func (repo *userRepository) QueryAllUsers(_ context.Context) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetParentsOfStudents(_ context.Context, studentIDs ...string) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var parents []user.User
	for _, usr := range repo.query() {
		if usr.Role != user.RoleParent {
			continue
		}
		for _, stdID := range studentIDs {
			if core.ContainsID(usr.ChildStudentIDs, stdID) {
				parents = append(parents, usr)
				break
			}
		}
	}
	return parents, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, id string, uu user.UpdateUser) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origUsr, ok := repo.db.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	// only save set fields
	origUsr.Name = uu.Name
	origUsr.Email = uu.Email
	if uu.AvatarURL != nil {
		origUsr.AvatarURL = *uu.AvatarURL
	}
	if uu.ClassIDs != nil {
		added, removed := core.DiffIDs(origUsr.ClassIDs, *uu.ClassIDs)
		for _, clsID := range added {
			if cls, ok := repo.db.classes[clsID]; ok {
				cls.TeacherIDs = core.AddID(cls.TeacherIDs, id)
			}
		}
		for _, clsID := range removed {
			if cls, ok := repo.db.classes[clsID]; ok {
				cls.TeacherIDs = core.RemoveID(cls.TeacherIDs, id)
			}
		}
		origUsr.ClassIDs = core.CopyIDs(*uu.ClassIDs)
	}
	if uu.ChildStudentIDs != nil {
		added, removed := core.DiffIDs(origUsr.ChildStudentIDs, *uu.ChildStudentIDs)
		for _, stdID := range added {
			if std, ok := repo.db.students[stdID]; ok {
				std.ParentIDs = core.AddID(std.ParentIDs, id)
			}
		}
		for _, stdID := range removed {
			if std, ok := repo.db.students[stdID]; ok {
				std.ParentIDs = core.RemoveID(std.ParentIDs, id)
			}
		}
		origUsr.ChildStudentIDs = core.CopyIDs(*uu.ChildStudentIDs)
	}
	origUsr.UpdatedAt = nowFunc().UTC()
	return *origUsr, nil
}

func (repo *userRepository) SetUserPassword(_ context.Context, id string, hash []byte) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.PasswordHash = hash
	usr.HasSetPassword = true
	usr.UpdatedAt = nowFunc().UTC()
	return *usr, nil
}

func (repo *userRepository) DeleteUser(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[id]; !ok {
		return user.ErrNotFound
	}
	repo.db.deleteUserLocked(id)
	return nil
}

func (repo *userRepository) RegisterInvitationCode(_ context.Context, code user.InvitationCode) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, exists := repo.db.codes[code.Code]; exists {
		return user.ErrCodeExists
	}
	// a fresh code revokes the user's previously active one
	for c, invite := range repo.db.codes {
		if invite.UserID == code.UserID {
			delete(repo.db.codes, c)
		}
	}
	repo.db.codes[code.Code] = &code
	repo.db.codeHistory = append(repo.db.codeHistory, code)
	return nil
}

func (repo *userRepository) GetInvitationCode(_ context.Context, code string) (user.InvitationCode, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if invite, ok := repo.db.codes[code]; ok {
		return *invite, nil
	}
	return user.InvitationCode{}, user.ErrInvalidCode
}

func (repo *userRepository) InvitationCodeHistory(_ context.Context) ([]user.InvitationCode, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	// newest first
	history := make([]user.InvitationCode, 0, len(repo.db.codeHistory))
	for i := len(repo.db.codeHistory) - 1; i >= 0; i-- {
		history = append(history, repo.db.codeHistory[i])
	}
	return history, nil
}
