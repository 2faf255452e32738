package inmemdb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	inmemdb "github.com/trezcool/darasa/storage/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

type repos struct {
	usr user.Repository
	std student.Repository
	cls class.Repository
}

func setup(t *testing.T) repos {
	db := testutil.OpenDB(t)
	return repos{
		usr: inmemdb.NewUserRepository(db),
		std: inmemdb.NewStudentRepository(db),
		cls: inmemdb.NewClassRepository(db),
	}
}

func ids(s []string) *[]string { return &s }

func Test_masterClassSeeded(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	cls, err := r.cls.GetClassByID(ctx, class.MasterClassID)
	assert.NoError(t, err)
	assert.Equal(t, class.MasterClassName, cls.Name)
	assert.True(t, cls.IsMaster())

	// no roster, ever
	students, err := r.std.GetStudentsByClass(ctx, class.MasterClassID)
	assert.NoError(t, err)
	assert.Empty(t, students)
}

func Test_teacherClassMirroring(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	// creating a teacher linked to a pre-existing class mirrors onto it
	c1 := testutil.CreateClass(t, r.cls, "C1", nil, nil)
	t1 := testutil.CreateUser(t, r.usr, "T1", "t1@darasa.io", user.RoleTeacher, []string{c1.ID}, nil)

	c1, err := r.cls.GetClassByID(ctx, c1.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{t1.ID}, c1.TeacherIDs)

	// unlinking from the user side mirrors back
	_, err = r.usr.UpdateUser(ctx, t1.ID, user.UpdateUser{Name: t1.Name, Email: t1.Email, ClassIDs: ids([]string{})})
	assert.NoError(t, err)
	c1, err = r.cls.GetClassByID(ctx, c1.ID)
	assert.NoError(t, err)
	assert.Empty(t, c1.TeacherIDs)

	// linking from the class side mirrors onto the user
	_, err = r.cls.UpdateClass(ctx, c1.ID, class.UpdateClass{Name: c1.Name, TeacherIDs: ids([]string{t1.ID})})
	assert.NoError(t, err)
	t1Got, err := r.usr.GetUserByID(ctx, t1.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{c1.ID}, t1Got.ClassIDs)
}

func Test_parentStudentMirroring(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	s1 := testutil.CreateStudent(t, r.std, "S1", "", nil)
	p1 := testutil.CreateUser(t, r.usr, "P1", "p1@darasa.io", user.RoleParent, nil, []string{s1.ID})

	s1, err := r.std.GetStudentByID(ctx, s1.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{p1.ID}, s1.ParentIDs)

	// replacing the student's parent set mirrors both ways
	p2 := testutil.CreateUser(t, r.usr, "P2", "p2@darasa.io", user.RoleParent, nil, nil)
	_, err = r.std.UpdateStudent(ctx, s1.ID, student.UpdateStudent{Name: s1.Name, ParentIDs: ids([]string{p2.ID})})
	assert.NoError(t, err)

	p1Got, _ := r.usr.GetUserByID(ctx, p1.ID)
	p2Got, _ := r.usr.GetUserByID(ctx, p2.ID)
	assert.Empty(t, p1Got.ChildStudentIDs)
	assert.Equal(t, []string{s1.ID}, p2Got.ChildStudentIDs)
}

func Test_studentClassMembership(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	c1 := testutil.CreateClass(t, r.cls, "C1", nil, nil)
	c2 := testutil.CreateClass(t, r.cls, "C2", nil, nil)
	s1 := testutil.CreateStudent(t, r.std, "S1", c1.ID, nil)

	c1Got, _ := r.cls.GetClassByID(ctx, c1.ID)
	assert.Equal(t, []string{s1.ID}, c1Got.StudentIDs)

	// moving the student pulls them out of the previous class
	_, err := r.std.UpdateStudent(ctx, s1.ID, student.UpdateStudent{Name: s1.Name, ClassID: &c2.ID})
	assert.NoError(t, err)

	c1Got, _ = r.cls.GetClassByID(ctx, c1.ID)
	c2Got, _ := r.cls.GetClassByID(ctx, c2.ID)
	assert.Empty(t, c1Got.StudentIDs)
	assert.Equal(t, []string{s1.ID}, c2Got.StudentIDs)

	s1Got, _ := r.std.GetStudentByID(ctx, s1.ID)
	assert.Equal(t, c2.ID, s1Got.ClassID)

	// adding via the class roster also moves the student
	_, err = r.cls.UpdateClass(ctx, c1.ID, class.UpdateClass{Name: c1.Name, StudentIDs: ids([]string{s1.ID})})
	assert.NoError(t, err)
	s1Got, _ = r.std.GetStudentByID(ctx, s1.ID)
	assert.Equal(t, c1.ID, s1Got.ClassID)
	c2Got, _ = r.cls.GetClassByID(ctx, c2.ID)
	assert.Empty(t, c2Got.StudentIDs)
}

func Test_masterClassTakesNoRoster(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	// a student created on the school-wide class is not mirrored onto it
	s1 := testutil.CreateStudent(t, r.std, "S1", class.MasterClassID, nil)
	master, err := r.cls.GetClassByID(ctx, class.MasterClassID)
	assert.NoError(t, err)
	assert.Empty(t, master.StudentIDs)
	s1Got, _ := r.std.GetStudentByID(ctx, s1.ID)
	assert.Equal(t, class.MasterClassID, s1Got.ClassID)

	// nor is one moved onto it
	c1 := testutil.CreateClass(t, r.cls, "C1", nil, nil)
	s2 := testutil.CreateStudent(t, r.std, "S2", c1.ID, nil)
	masterID := class.MasterClassID
	_, err = r.std.UpdateStudent(ctx, s2.ID, student.UpdateStudent{Name: s2.Name, ClassID: &masterID})
	assert.NoError(t, err)
	master, _ = r.cls.GetClassByID(ctx, class.MasterClassID)
	assert.Empty(t, master.StudentIDs)
	c1Got, _ := r.cls.GetClassByID(ctx, c1.ID)
	assert.Empty(t, c1Got.StudentIDs)

	// roster writes on the class itself are ignored too
	_, err = r.cls.UpdateClass(ctx, class.MasterClassID, class.UpdateClass{Name: master.Name, StudentIDs: ids([]string{s1.ID})})
	assert.NoError(t, err)
	master, _ = r.cls.GetClassByID(ctx, class.MasterClassID)
	assert.Empty(t, master.StudentIDs)

	// and it never shows up in a student's class listing
	classes, err := r.cls.GetClassesByStudent(ctx, s1.ID)
	assert.NoError(t, err)
	assert.Empty(t, classes)
}

func Test_rowSnapshotsAreImmutable(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	c1 := testutil.CreateClass(t, r.cls, "C1", nil, nil)
	t1 := testutil.CreateUser(t, r.usr, "T1", "t1@darasa.io", user.RoleTeacher, []string{c1.ID}, nil)
	t2 := testutil.CreateUser(t, r.usr, "T2", "t2@darasa.io", user.RoleTeacher, []string{c1.ID}, nil)

	before, err := r.cls.GetClassByID(ctx, c1.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{t1.ID, t2.ID}, before.TeacherIDs)

	// later writes must not reach into the snapshot handed out above
	assert.NoError(t, r.usr.DeleteUser(ctx, t1.ID))
	assert.Equal(t, []string{t1.ID, t2.ID}, before.TeacherIDs)

	after, err := r.cls.GetClassByID(ctx, c1.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{t2.ID}, after.TeacherIDs)
}

func Test_deleteMasterClassFails(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	err := r.cls.DeleteClass(ctx, class.MasterClassID)
	assert.Equal(t, class.ErrMasterClassProtected, err)

	// still there
	_, err = r.cls.GetClassByID(ctx, class.MasterClassID)
	assert.NoError(t, err)
}

func Test_deleteTeacherScrubsClasses(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	c1 := testutil.CreateClass(t, r.cls, "C1", nil, nil)
	c2 := testutil.CreateClass(t, r.cls, "C2", nil, nil)
	t1 := testutil.CreateUser(t, r.usr, "T1", "t1@darasa.io", user.RoleTeacher, []string{c1.ID, c2.ID}, nil)
	t2 := testutil.CreateUser(t, r.usr, "T2", "t2@darasa.io", user.RoleTeacher, []string{c1.ID}, nil)

	assert.NoError(t, r.usr.DeleteUser(ctx, t1.ID))

	c1Got, _ := r.cls.GetClassByID(ctx, c1.ID)
	c2Got, _ := r.cls.GetClassByID(ctx, c2.ID)
	assert.Equal(t, []string{t2.ID}, c1Got.TeacherIDs)
	assert.Empty(t, c2Got.TeacherIDs)
}

func Test_deleteClassScrubsLinks(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	c1 := testutil.CreateClass(t, r.cls, "C1", nil, nil)
	t1 := testutil.CreateUser(t, r.usr, "T1", "t1@darasa.io", user.RoleTeacher, []string{c1.ID}, nil)
	s1 := testutil.CreateStudent(t, r.std, "S1", c1.ID, nil)

	assert.NoError(t, r.cls.DeleteClass(ctx, c1.ID))

	t1Got, _ := r.usr.GetUserByID(ctx, t1.ID)
	s1Got, _ := r.std.GetStudentByID(ctx, s1.ID)
	assert.Empty(t, t1Got.ClassIDs)
	assert.Empty(t, s1Got.ClassID)
}

func Test_deleteStudentCascadesAccount(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	s1 := testutil.CreateStudent(t, r.std, "S1", "", nil)
	p1 := testutil.CreateUser(t, r.usr, "P1", "p1@darasa.io", user.RoleParent, nil, []string{s1.ID})

	// provision a login account for the student
	u1 := testutil.CreateUser(t, r.usr, "S1", "s1@darasa.io", user.RoleStudentUser, nil, nil)
	_, err := r.std.AttachUserProfile(ctx, s1.ID, u1.ID)
	assert.NoError(t, err)
	assert.NoError(t, r.usr.RegisterInvitationCode(ctx, user.InvitationCode{
		Code: "STUD-AAAAA", UserID: u1.ID, Role: u1.Role,
	}))

	assert.NoError(t, r.std.DeleteStudent(ctx, s1.ID))

	// the account, its code and its history entries are gone
	_, err = r.usr.GetUserByID(ctx, u1.ID)
	assert.Equal(t, user.ErrNotFound, err)
	_, err = r.usr.GetInvitationCode(ctx, "STUD-AAAAA")
	assert.Equal(t, user.ErrInvalidCode, err)
	history, err := r.usr.InvitationCodeHistory(ctx)
	assert.NoError(t, err)
	assert.Empty(t, history)

	// parent link is scrubbed
	p1Got, _ := r.usr.GetUserByID(ctx, p1.ID)
	assert.Empty(t, p1Got.ChildStudentIDs)
}

func Test_codeReassignment(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	u1 := testutil.CreateUser(t, r.usr, "U1", "u1@darasa.io", user.RoleAdmin, nil, nil)

	first := user.InvitationCode{Code: "ADMI-AAAAA", UserID: u1.ID, Role: u1.Role}
	second := user.InvitationCode{Code: "ADMI-BBBBB", UserID: u1.ID, Role: u1.Role}
	assert.NoError(t, r.usr.RegisterInvitationCode(ctx, first))
	assert.NoError(t, r.usr.RegisterInvitationCode(ctx, second))

	// a taken code is rejected
	err := r.usr.RegisterInvitationCode(ctx, user.InvitationCode{Code: "ADMI-BBBBB", UserID: "someone-else"})
	assert.Equal(t, user.ErrCodeExists, err)

	// only the most recent code resolves
	_, err = r.usr.GetInvitationCode(ctx, first.Code)
	assert.Equal(t, user.ErrInvalidCode, err)
	got, err := r.usr.GetInvitationCode(ctx, second.Code)
	assert.NoError(t, err)
	assert.Equal(t, u1.ID, got.UserID)

	// history keeps both entries, newest first
	history, err := r.usr.InvitationCodeHistory(ctx)
	assert.NoError(t, err)
	if assert.Len(t, history, 2) {
		assert.Equal(t, second.Code, history[0].Code)
		assert.Equal(t, first.Code, history[1].Code)
	}
}

func Test_checkEmailUniqueness(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	u1 := testutil.CreateUser(t, r.usr, "U1", "u1@darasa.io", user.RoleAdmin, nil, nil)

	assert.Equal(t, user.ErrEmailExists, r.usr.CheckEmailUniqueness(ctx, "u1@darasa.io"))
	assert.NoError(t, r.usr.CheckEmailUniqueness(ctx, "u2@darasa.io"))
	// a user may keep their own email
	assert.NoError(t, r.usr.CheckEmailUniqueness(ctx, "u1@darasa.io", u1))
}
