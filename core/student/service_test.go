package student_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	inmemdb "github.com/trezcool/darasa/storage/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

type mailSvcStub struct{}

func (mailSvcStub) SendMessages(...*core.EmailMessage) {}

func setup(t *testing.T) (student.Service, user.Service) {
	db := testutil.OpenDB(t)
	conf := &core.Config{AppName: "Darasa", TestMode: true}
	logger := testutil.NewLogger()
	usrSvc := user.NewService(conf, inmemdb.NewUserRepository(db), mailSvcStub{}, logger)
	return student.NewService(inmemdb.NewStudentRepository(db), usrSvc, logger), usrSvc
}

func Test_service_Create_withProfile(t *testing.T) {
	svc, usrSvc := setup(t)
	ctx := context.Background()

	// a profile needs an email
	_, err := svc.Create(ctx, student.NewStudent{Name: "Sam", CreateProfile: true})
	assert.Error(t, err)

	created, err := svc.Create(ctx, student.NewStudent{
		Name: "Sam", CreateProfile: true, Email: "sam@darasa.io",
	})
	assert.NoError(t, err)
	assert.True(t, created.Student.HasUserProfile)
	assert.NotEmpty(t, created.Student.UserID)
	assert.True(t, strings.HasPrefix(created.InvitationCode, "STUD-"))

	usr, err := usrSvc.GetByID(ctx, created.Student.UserID)
	assert.NoError(t, err)
	assert.Equal(t, user.RoleStudentUser, usr.Role)
	assert.Equal(t, created.Student.ID, usr.StudentID)
	assert.Equal(t, "Sam", usr.Name)
}

func Test_service_Create_withoutProfile(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, student.NewStudent{Name: "Sara"})
	assert.NoError(t, err)
	assert.False(t, created.Student.HasUserProfile)
	assert.Empty(t, created.Student.UserID)
	assert.Empty(t, created.InvitationCode)
}

func Test_service_ProvisionProfile(t *testing.T) {
	svc, usrSvc := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, student.NewStudent{Name: "Sara"})
	assert.NoError(t, err)

	provisioned, err := svc.ProvisionProfile(ctx, created.Student.ID, "sara@darasa.io")
	assert.NoError(t, err)
	assert.True(t, provisioned.Student.HasUserProfile)
	assert.NotEmpty(t, provisioned.InvitationCode)

	// provisioning twice is a no-op
	again, err := svc.ProvisionProfile(ctx, created.Student.ID, "sara2@darasa.io")
	assert.NoError(t, err)
	assert.Equal(t, provisioned.Student.UserID, again.Student.UserID)
	assert.Empty(t, again.InvitationCode)

	_, err = usrSvc.GetByEmail(ctx, "sara2@darasa.io")
	assert.Equal(t, user.ErrNotFound, err)
}

func Test_service_Delete_cascadesAccount(t *testing.T) {
	svc, usrSvc := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, student.NewStudent{
		Name: "Sam", CreateProfile: true, Email: "sam@darasa.io",
	})
	assert.NoError(t, err)

	assert.NoError(t, svc.Delete(ctx, created.Student.ID))

	_, err = svc.GetByID(ctx, created.Student.ID)
	assert.Equal(t, student.ErrNotFound, err)
	_, err = usrSvc.GetByID(ctx, created.Student.UserID)
	assert.Equal(t, user.ErrNotFound, err)
}
