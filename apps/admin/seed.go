package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/darasa/core/calendar"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/feed"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

// seed loads a small demo school: one admin, two teachers with a class each,
// a parent with two children, school items and a few posts.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	admin, err := cli.usrSvc.Create(ctx, user.NewUser{Name: "Alice Admin", Email: "admin@darasa.io", Role: user.RoleAdmin})
	if err != nil {
		return err
	}
	t1, err := cli.usrSvc.Create(ctx, user.NewUser{Name: "Tom Teacher", Email: "tom@darasa.io", Role: user.RoleTeacher})
	if err != nil {
		return err
	}
	t2, err := cli.usrSvc.Create(ctx, user.NewUser{Name: "Tina Teacher", Email: "tina@darasa.io", Role: user.RoleTeacher})
	if err != nil {
		return err
	}

	c1, err := cli.clsSvc.Create(ctx, class.NewClass{Name: "Grade 4A", TeacherIDs: []string{t1.User.ID}})
	if err != nil {
		return err
	}
	c2, err := cli.clsSvc.Create(ctx, class.NewClass{Name: "Grade 5B", TeacherIDs: []string{t2.User.ID}})
	if err != nil {
		return err
	}

	s1, err := cli.stdSvc.Create(ctx, student.NewStudent{
		Name: "Sam Mwangi", ClassID: c1.ID,
		CreateProfile: true, Email: "sam@darasa.io",
	})
	if err != nil {
		return err
	}
	s2, err := cli.stdSvc.Create(ctx, student.NewStudent{Name: "Sara Mwangi", ClassID: c2.ID})
	if err != nil {
		return err
	}

	parent, err := cli.usrSvc.Create(ctx, user.NewUser{
		Name: "Paul Mwangi", Email: "paul@darasa.io", Role: user.RoleParent,
		ChildStudentIDs: []string{s1.Student.ID, s2.Student.ID},
	})
	if err != nil {
		return err
	}

	nextWeek := time.Now().UTC().AddDate(0, 0, 7)
	if _, err = cli.calSvc.CreateSchoolItem(ctx, calendar.NewSchoolItem{
		Type: calendar.SchoolItemAcademic, Title: "Mid-term exams", Date: nextWeek,
	}); err != nil {
		return err
	}

	if _, err = cli.feedSvc.Create(ctx, admin.User, feed.NewPost{
		ClassID: c1.ID, // re-targeted school-wide
		Type:    feed.TypeEventAnnouncement,
		Title:   "Sports day", Content: "Annual sports day at the main field.",
		IsCalendarEvent: true, EventDate: &nextWeek,
	}); err != nil {
		return err
	}
	if _, err = cli.feedSvc.Create(ctx, t1.User, feed.NewPost{
		ClassID: c1.ID,
		Type:    feed.TypeClassUpdate,
		Title:   "Homework", Content: "Finish chapter 3 exercises.",
	}); err != nil {
		return err
	}

	fmt.Println("demo school loaded:")
	fmt.Printf("  admin   %s - code %s\n", admin.User.Email, admin.InvitationCode)
	fmt.Printf("  teacher %s - code %s\n", t1.User.Email, t1.InvitationCode)
	fmt.Printf("  teacher %s - code %s\n", t2.User.Email, t2.InvitationCode)
	fmt.Printf("  parent  %s - code %s\n", parent.User.Email, parent.InvitationCode)
	fmt.Printf("  student %s - code %s\n", s1.Student.Name, s1.InvitationCode)
	return nil
}
