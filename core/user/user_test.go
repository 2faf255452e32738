package user

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core"
)

func Test_makeCode(t *testing.T) {
	tests := []struct {
		role       string
		wantPrefix string
	}{
		{RoleAdmin, "ADMI"},
		{RoleTeacher, "TEAC"},
		{RoleParent, "PARE"},
		{RoleStudentUser, "STUD"},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			code := makeCode(tt.role)
			parts := strings.SplitN(code, "-", 2)
			assert.Equal(t, tt.wantPrefix, parts[0])
			assert.Len(t, parts[1], codeSuffixLen)
			for _, c := range parts[1] {
				assert.Contains(t, codeCharset, string(c))
			}
		})
	}
}

func TestSetPassword_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sp      SetPassword
		wantErr bool
	}{
		{name: "ok", sp: SetPassword{Password: "LePassword#007", PasswordConfirm: "LePassword#007"}},
		{name: "mismatch", sp: SetPassword{Password: "LePassword#007", PasswordConfirm: "LePassword#008"}, wantErr: true},
		{name: "too short", sp: SetPassword{Password: "Le#p07", PasswordConfirm: "Le#p07"}, wantErr: true},
		{name: "whitespace", sp: SetPassword{Password: "Le Password#007", PasswordConfirm: "Le Password#007"}, wantErr: true},
		{name: "all numeric", sp: SetPassword{Password: "1234567890", PasswordConfirm: "1234567890"}, wantErr: true},
		{name: "no complexity", sp: SetPassword{Password: "lepassword007", PasswordConfirm: "lepassword007"}, wantErr: true},
		{
			name: "similar to name",
			sp: SetPassword{
				Password: "Hakuna@Matata01", PasswordConfirm: "Hakuna@Matata01",
				Name: "Hakuna Matata01",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sp.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// ----- service tests -----

type mailSvcMock struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (m *mailSvcMock) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
}

// repoMock is a minimal in-memory Repository without link mirroring.
type repoMock struct {
	users   map[string]*User
	codes   map[string]*InvitationCode
	history []InvitationCode
	pk      int
}

var _ Repository = (*repoMock)(nil)

func newRepoMock() *repoMock {
	return &repoMock{
		users: make(map[string]*User),
		codes: make(map[string]*InvitationCode),
	}
}

func (r *repoMock) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...User) error {
	excluded := make(map[string]bool, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = true
	}
	for _, usr := range r.users {
		if usr.Email == email && !excluded[usr.ID] {
			return ErrEmailExists
		}
	}
	return nil
}

func (r *repoMock) CreateUser(_ context.Context, usr *User) error {
	r.pk++
	usr.ID = string(rune('a' + r.pk))
	row := *usr
	r.users[row.ID] = &row
	return nil
}

func (r *repoMock) QueryAllUsers(_ context.Context) ([]User, error) {
	users := make([]User, 0, len(r.users))
	for _, usr := range r.users {
		users = append(users, *usr)
	}
	return users, nil
}

func (r *repoMock) GetUserByID(_ context.Context, id string) (User, error) {
	if usr, ok := r.users[id]; ok {
		return *usr, nil
	}
	return User{}, ErrNotFound
}

func (r *repoMock) GetUserByEmail(_ context.Context, email string) (User, error) {
	for _, usr := range r.users {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *repoMock) GetParentsOfStudents(_ context.Context, _ ...string) ([]User, error) {
	return nil, nil
}

func (r *repoMock) UpdateUser(_ context.Context, id string, uu UpdateUser) (User, error) {
	usr, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	usr.Name = uu.Name
	usr.Email = uu.Email
	return *usr, nil
}

func (r *repoMock) SetUserPassword(_ context.Context, id string, hash []byte) (User, error) {
	usr, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	usr.PasswordHash = hash
	usr.HasSetPassword = true
	return *usr, nil
}

func (r *repoMock) DeleteUser(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func (r *repoMock) RegisterInvitationCode(_ context.Context, code InvitationCode) error {
	if _, exists := r.codes[code.Code]; exists {
		return ErrCodeExists
	}
	for c, invite := range r.codes {
		if invite.UserID == code.UserID {
			delete(r.codes, c)
		}
	}
	r.codes[code.Code] = &code
	r.history = append(r.history, code)
	return nil
}

func (r *repoMock) GetInvitationCode(_ context.Context, code string) (InvitationCode, error) {
	if invite, ok := r.codes[code]; ok {
		return *invite, nil
	}
	return InvitationCode{}, ErrInvalidCode
}

func (r *repoMock) InvitationCodeHistory(_ context.Context) ([]InvitationCode, error) {
	// newest first
	history := make([]InvitationCode, 0, len(r.history))
	for i := len(r.history) - 1; i >= 0; i-- {
		history = append(history, r.history[i])
	}
	return history, nil
}

func setup() (Service, *repoMock, *mailSvcMock) {
	conf := &core.Config{AppName: "Darasa", TestMode: true}
	repo := newRepoMock()
	mailSvc := &mailSvcMock{}
	return NewService(conf, repo, mailSvc, nil), repo, mailSvc
}

func Test_service_Create(t *testing.T) {
	svc, repo, mailSvc := setup()
	ctx := context.Background()

	created, err := svc.Create(ctx, NewUser{Name: "Tom Teacher", Email: "Tom@Darasa.IO", Role: RoleTeacher})
	assert.NoError(t, err)
	assert.NotEmpty(t, created.User.ID)
	assert.Equal(t, "tom@darasa.io", created.User.Email)
	assert.Equal(t, DefaultAvatarURL, created.User.AvatarURL)
	assert.False(t, created.User.HasSetPassword)
	assert.True(t, strings.HasPrefix(created.InvitationCode, "TEAC-"))

	// the code authenticates StartPasswordSetup
	usr, err := svc.StartPasswordSetup(ctx, created.InvitationCode)
	assert.NoError(t, err)
	assert.Equal(t, created.User.ID, usr.ID)

	// invitation email was sent
	assert.Len(t, mailSvc.sent, 1)
	assert.Equal(t, "invitation", mailSvc.sent[0].TemplateName)

	// duplicate email is rejected
	_, err = svc.Create(ctx, NewUser{Name: "Tom Again", Email: "tom@darasa.io", Role: RoleParent})
	assert.Error(t, err)
	assert.Len(t, repo.users, 1)
}

func Test_service_Create_roleLinks(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	tests := []struct {
		name    string
		nu      NewUser
		wantErr bool
	}{
		{name: "teacher with classes", nu: NewUser{Name: "T", Email: "t@darasa.io", Role: RoleTeacher, ClassIDs: []string{"c1"}}},
		{name: "parent with classes", nu: NewUser{Name: "P", Email: "p@darasa.io", Role: RoleParent, ClassIDs: []string{"c1"}}, wantErr: true},
		{name: "teacher with children", nu: NewUser{Name: "T2", Email: "t2@darasa.io", Role: RoleTeacher, ChildStudentIDs: []string{"s1"}}, wantErr: true},
		{name: "admin with student link", nu: NewUser{Name: "A", Email: "a@darasa.io", Role: RoleAdmin, StudentID: "s1"}, wantErr: true},
		{name: "bad role", nu: NewUser{Name: "X", Email: "x@darasa.io", Role: "SUPERADMIN"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.nu)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_service_Login(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	created, err := svc.Create(ctx, NewUser{Name: "Paul Parent", Email: "paul@darasa.io", Role: RoleParent})
	assert.NoError(t, err)
	code := created.InvitationCode

	// weak first password is refused and nothing is persisted
	_, err = svc.Login(ctx, code, "weak")
	assert.Error(t, err)
	usr, err := svc.GetByID(ctx, created.User.ID)
	assert.NoError(t, err)
	assert.False(t, usr.HasSetPassword)

	// first login sets the password
	usr, err = svc.Login(ctx, code, "LePassword#007")
	assert.NoError(t, err)
	assert.True(t, usr.HasSetPassword)

	// subsequent logins verify it
	_, err = svc.Login(ctx, code, "LePassword#007")
	assert.NoError(t, err)
	_, err = svc.Login(ctx, code, "NotThePassword#1")
	assert.Equal(t, ErrInvalidCredentials, err)

	// unknown code
	_, err = svc.Login(ctx, "PARE-ZZZZZ", "LePassword#007")
	assert.Equal(t, ErrInvalidCredentials, err)
}

func Test_service_GenerateCode_revokesPrevious(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	created, err := svc.Create(ctx, NewUser{Name: "Alice Admin", Email: "alice@darasa.io", Role: RoleAdmin})
	assert.NoError(t, err)
	firstCode := created.InvitationCode

	second, err := svc.GenerateCode(ctx, created.User.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, firstCode, second.Code)

	// only the most recent code authenticates
	_, err = svc.StartPasswordSetup(ctx, firstCode)
	assert.Error(t, err)
	_, err = svc.StartPasswordSetup(ctx, second.Code)
	assert.NoError(t, err)

	// history keeps both, newest first
	history, err := svc.CodeHistory(ctx)
	assert.NoError(t, err)
	if assert.Len(t, history, 2) {
		assert.Equal(t, second.Code, history[0].Code)
		assert.Equal(t, firstCode, history[1].Code)
	}
}

func Test_service_CompletePasswordSetup(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	created, err := svc.Create(ctx, NewUser{Name: "Sam Student", Email: "sam@darasa.io", Role: RoleStudentUser})
	assert.NoError(t, err)

	usr, err := svc.CompletePasswordSetup(ctx, created.User.ID, SetPassword{
		Password: "LePassword#007", PasswordConfirm: "LePassword#007",
	})
	assert.NoError(t, err)
	assert.True(t, usr.HasSetPassword)

	// a set password cannot be set again through the first-login flow
	_, err = svc.CompletePasswordSetup(ctx, created.User.ID, SetPassword{
		Password: "LePassword#008", PasswordConfirm: "LePassword#008",
	})
	assert.Equal(t, ErrPasswordAlreadySet, err)
	_, err = svc.StartPasswordSetup(ctx, created.InvitationCode)
	assert.Equal(t, ErrPasswordAlreadySet, err)
}
