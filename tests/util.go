package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/calendar"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/feed"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	inmemdb "github.com/trezcool/darasa/storage/inmem"
)

func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.TestMode = true
	return conf
}

func NewLogger() core.Logger {
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
	logger.Enable(false)
	return logger
}

func OpenDB(_ *testing.T) *inmemdb.DB {
	return inmemdb.Open(NewLogger())
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, role string,
	classIDs, childStudentIDs []string,
) user.User {
	tstamp := time.Now().UTC()
	usr := user.User{
		Name:            name,
		Email:           email,
		Role:            role,
		AvatarURL:       user.DefaultAvatarURL,
		ClassIDs:        classIDs,
		ChildStudentIDs: childStudentIDs,
		CreatedAt:       tstamp,
		UpdatedAt:       tstamp,
	}
	if err := repo.CreateUser(context.Background(), &usr); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, classID string,
	parentIDs []string,
) student.Student {
	tstamp := time.Now().UTC()
	std := student.Student{
		Name:      name,
		AvatarURL: user.DefaultAvatarURL,
		ClassID:   classID,
		ParentIDs: parentIDs,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if err := repo.CreateStudent(context.Background(), &std); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateClass(
	t *testing.T,
	repo class.Repository,
	name string,
	teacherIDs, studentIDs []string,
) class.Class {
	tstamp := time.Now().UTC()
	cls := class.Class{
		Name:       name,
		TeacherIDs: teacherIDs,
		StudentIDs: studentIDs,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	}
	if err := repo.CreateClass(context.Background(), &cls); err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreatePost(
	t *testing.T,
	repo feed.Repository,
	author user.User,
	classID, typ, title, privacy string,
	eventDate *time.Time,
	targetUserIDs, targetStudentIDs []string,
) feed.Post {
	post := feed.Post{
		ClassID:          classID,
		Type:             typ,
		Title:            title,
		Content:          title + " content",
		AuthorID:         author.ID,
		AuthorName:       author.Name,
		AuthorAvatarURL:  author.AvatarURL,
		Privacy:          privacy,
		TargetUserIDs:    targetUserIDs,
		TargetStudentIDs: targetStudentIDs,
		IsCalendarEvent:  eventDate != nil,
		EventDate:        eventDate,
		Timestamp:        time.Now().UTC(),
	}
	if err := repo.CreatePost(context.Background(), &post); err != nil {
		t.Fatalf("CreatePost() failed: %v", err)
	}
	return post
}

func CreateReminder(
	t *testing.T,
	repo calendar.Repository,
	parent user.User,
	teacherID string,
	std student.Student,
	title string,
	date time.Time,
) calendar.Reminder {
	rem := calendar.Reminder{
		ParentID:    parent.ID,
		TeacherID:   teacherID,
		StudentID:   std.ID,
		StudentName: std.Name,
		Title:       title,
		Date:        date.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.CreateReminder(context.Background(), &rem); err != nil {
		t.Fatalf("CreateReminder() failed: %v", err)
	}
	return rem
}
