// Package inmemdb provides map-backed repositories for every core domain.
// All tables share one store-wide lock so each mutation (including its link
// mirroring) is atomic with respect to concurrent callers.
package inmemdb

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/calendar"
	"github.com/trezcool/darasa/core/chat"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/feed"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users       map[string]*user.User
	students    map[string]*student.Student
	classes     map[string]*class.Class
	schoolItems map[string]*calendar.SchoolItem
	reminders   map[string]*calendar.Reminder

	posts    []*feed.Post // newest first
	messages []*chat.Message

	codes       map[string]*user.InvitationCode // active codes, keyed by code
	codeHistory []user.InvitationCode           // append-only

	log core.Logger
}

// Open initializes an empty store seeded with the school-wide class.
func Open(log core.Logger) *DB {
	db := &DB{
		users:       make(map[string]*user.User),
		students:    make(map[string]*student.Student),
		classes:     make(map[string]*class.Class),
		schoolItems: make(map[string]*calendar.SchoolItem),
		reminders:   make(map[string]*calendar.Reminder),
		codes:       make(map[string]*user.InvitationCode),
		log:         log,
	}
	db.classes[class.MasterClassID] = &class.Class{
		ID:   class.MasterClassID,
		Name: class.MasterClassName,
	}
	return db
}

func newID() string { return uuid.New().String() }

var nowFunc = time.Now // mockable

// deleteUserLocked removes a user and scrubs every link pointing at them.
// Callers must hold the write lock.
func (db *DB) deleteUserLocked(id string) {
	usr, ok := db.users[id]
	if !ok {
		return
	}

	switch usr.Role {
	case user.RoleTeacher:
		for _, cls := range db.classes {
			cls.TeacherIDs = core.RemoveID(cls.TeacherIDs, id)
		}
	case user.RoleParent:
		for _, std := range db.students {
			std.ParentIDs = core.RemoveID(std.ParentIDs, id)
		}
	case user.RoleStudentUser:
		if usr.StudentID != "" {
			if std, ok := db.students[usr.StudentID]; ok {
				std.UserID = ""
				std.HasUserProfile = false
			}
		}
	}

	// revoke the active code and drop the user's history entries
	for code, invite := range db.codes {
		if invite.UserID == id {
			delete(db.codes, code)
		}
	}
	history := db.codeHistory[:0]
	for _, invite := range db.codeHistory {
		if invite.UserID != id {
			history = append(history, invite)
		}
	}
	db.codeHistory = history

	delete(db.users, id)
}
