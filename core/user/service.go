package user

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrPasswordAlreadySet = errors.New("password has already been set")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	// Repository provides access to the users storage. Implementations must
	// keep the bidirectional user links (classes taught, children, student
	// profile) consistent on every write.
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr *User) error
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetParentsOfStudents(ctx context.Context, studentIDs ...string) ([]User, error)
		UpdateUser(ctx context.Context, id string, uu UpdateUser) (User, error)
		SetUserPassword(ctx context.Context, id string, hash []byte) (User, error)
		DeleteUser(ctx context.Context, id string) error

		// RegisterInvitationCode stores code for its user, revoking the user's
		// previously active code if any. It fails with ErrCodeExists when the
		// code is already taken. Every registered code is kept in the history.
		RegisterInvitationCode(ctx context.Context, code InvitationCode) error
		GetInvitationCode(ctx context.Context, code string) (InvitationCode, error)
		// InvitationCodeHistory returns every registered code, newest first.
		InvitationCodeHistory(ctx context.Context) ([]InvitationCode, error)
	}

	Service interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		Create(ctx context.Context, nu NewUser) (CreatedUser, error)
		QueryAll(ctx context.Context) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		ParentsOfStudents(ctx context.Context, studentIDs ...string) ([]User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		Delete(ctx context.Context, id string) error

		// GenerateCode mints a fresh invitation code for an existing user,
		// revoking their previous one.
		GenerateCode(ctx context.Context, userID string) (InvitationCode, error)
		// CodeHistory lists every code ever issued, newest first.
		CodeHistory(ctx context.Context) ([]InvitationCode, error)

		// StartPasswordSetup resolves an invitation code to its user for the
		// first-login flow.
		StartPasswordSetup(ctx context.Context, code string) (User, error)
		CompletePasswordSetup(ctx context.Context, userID string, sp SetPassword) (User, error)
		Login(ctx context.Context, code, password string) (User, error)
	}

	service struct {
		conf    *core.Config
		repo    Repository
		mailSvc core.EmailService
		log     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService, log core.Logger) Service {
	return &service{
		conf:    conf,
		repo:    repo,
		mailSvc: mailSvc,
		log:     log,
	}
}

func (s service) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error {
	return s.repo.CheckEmailUniqueness(ctx, email, excludedUsers...)
}

func (s service) Create(ctx context.Context, nu NewUser) (CreatedUser, error) {
	if err := nu.Validate(ctx, s); err != nil {
		return CreatedUser{}, err
	}

	if nu.AvatarURL == "" {
		nu.AvatarURL = DefaultAvatarURL
	}
	now := nowFunc().UTC()
	usr := User{
		Name:            nu.Name,
		Email:           nu.Email,
		Role:            nu.Role,
		AvatarURL:       nu.AvatarURL,
		ClassIDs:        core.CopyIDs(nu.ClassIDs),
		ChildStudentIDs: core.CopyIDs(nu.ChildStudentIDs),
		StudentID:       nu.StudentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.CreateUser(ctx, &usr); err != nil {
		return CreatedUser{}, errors.Wrap(err, "creating user")
	}

	code, err := s.registerCode(ctx, usr)
	if err != nil {
		return CreatedUser{}, err
	}

	s.sendInvitationEmail(usr, code.Code)
	return CreatedUser{User: usr, InvitationCode: code.Code}, nil
}

func (s service) QueryAll(ctx context.Context) ([]User, error) {
	return s.repo.QueryAllUsers(ctx)
}

func (s service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (s service) ParentsOfStudents(ctx context.Context, studentIDs ...string) ([]User, error) {
	return s.repo.GetParentsOfStudents(ctx, studentIDs...)
}

func (s service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	origUsr, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err = uu.Validate(ctx, origUsr, s); err != nil {
		return User{}, err
	}
	return s.repo.UpdateUser(ctx, id, uu)
}

func (s service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

func (s service) GenerateCode(ctx context.Context, userID string) (InvitationCode, error) {
	usr, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return InvitationCode{}, err
	}
	return s.registerCode(ctx, usr)
}

func (s service) CodeHistory(ctx context.Context) ([]InvitationCode, error) {
	return s.repo.InvitationCodeHistory(ctx)
}

func (s service) StartPasswordSetup(ctx context.Context, code string) (User, error) {
	invite, err := s.repo.GetInvitationCode(ctx, core.CleanString(code))
	if err != nil {
		return User{}, err
	}
	usr, err := s.repo.GetUserByID(ctx, invite.UserID)
	if err != nil {
		return User{}, err
	}
	if usr.HasSetPassword {
		return User{}, ErrPasswordAlreadySet
	}
	return usr, nil
}

func (s service) CompletePasswordSetup(ctx context.Context, userID string, sp SetPassword) (User, error) {
	usr, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if usr.HasSetPassword {
		return User{}, ErrPasswordAlreadySet
	}
	return s.setPassword(ctx, usr, sp)
}

// Login authenticates a user by invitation code. On the very first login the
// provided password becomes the user's password (subject to the password
// policy); afterwards it must match the stored one.
func (s service) Login(ctx context.Context, code, password string) (User, error) {
	invite, err := s.repo.GetInvitationCode(ctx, core.CleanString(code))
	if err != nil {
		if errors.Cause(err) == ErrInvalidCode {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	usr, err := s.repo.GetUserByID(ctx, invite.UserID)
	if err != nil {
		return User{}, err
	}

	if !usr.HasSetPassword {
		return s.setPassword(ctx, usr, SetPassword{
			Password:        password,
			PasswordConfirm: password,
			Name:            usr.Name,
			Email:           usr.Email,
		})
	}
	if err = usr.CheckPassword(password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (s service) setPassword(ctx context.Context, usr User, sp SetPassword) (User, error) {
	sp.Name = usr.Name
	sp.Email = usr.Email
	if err := sp.Validate(); err != nil {
		return User{}, err
	}
	if err := usr.SetPassword(sp.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return s.repo.SetUserPassword(ctx, usr.ID, usr.PasswordHash)
}

// registerCode mints a code and registers it, retrying on the (unlikely)
// collision with an existing code.
func (s service) registerCode(ctx context.Context, usr User) (InvitationCode, error) {
	var err error
	for i := 0; i < maxCodeAttempts; i++ {
		code := InvitationCode{
			Code:      makeCode(usr.Role),
			UserID:    usr.ID,
			Role:      usr.Role,
			CreatedAt: nowFunc().UTC(),
		}
		if err = s.repo.RegisterInvitationCode(ctx, code); err == nil {
			return code, nil
		}
		if errors.Cause(err) != ErrCodeExists {
			return InvitationCode{}, err
		}
	}
	return InvitationCode{}, errors.Wrap(err, "generating invitation code")
}

func (s service) sendInvitationEmail(usr User, code string) {
	data := struct {
		Name     string
		Role     string
		RoleName string
		Code     string
	}{usr.Name, usr.Role, RoleDisplayName(usr.Role), code}

	s.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + s.conf.AppName,
		TemplateName: "invitation",
		TemplateData: data,
	})
}
