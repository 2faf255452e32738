package calendar

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/feed"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrItemNotFound     = errors.New("school item not found")
	ErrReminderNotFound = errors.New("reminder not found")
	ErrNotReminderOwner = errors.New("only the addressed teacher may acknowledge a reminder")
)

type (
	// Repository provides access to the school items and reminders storage.
	Repository interface {
		CreateSchoolItem(ctx context.Context, item *SchoolItem) error
		QueryAllSchoolItems(ctx context.Context) ([]SchoolItem, error)
		DeleteSchoolItem(ctx context.Context, id string) error

		CreateReminder(ctx context.Context, rem *Reminder) error
		GetReminderByID(ctx context.Context, id string) (Reminder, error)
		GetRemindersByTeacher(ctx context.Context, teacherID string) ([]Reminder, error)
		// AcknowledgeReminder sets the acknowledged flag; it is never unset.
		AcknowledgeReminder(ctx context.Context, id string) (Reminder, error)
	}

	Service interface {
		CreateSchoolItem(ctx context.Context, ni NewSchoolItem) (SchoolItem, error)
		SchoolItems(ctx context.Context) ([]SchoolItem, error)
		DeleteSchoolItem(ctx context.Context, id string) error

		CreateReminder(ctx context.Context, parent user.User, nr NewReminder) (Reminder, error)
		RemindersForTeacher(ctx context.Context, teacherID string) ([]Reminder, error)
		// Acknowledge marks a reminder handled; only the addressed teacher
		// may do so and the flag never reverts.
		Acknowledge(ctx context.Context, actor user.User, reminderID string) (Reminder, error)

		// ItemsForUser merges school items, calendar-event posts and (for
		// teachers) reminders into one date-ascending feed, applying the
		// per-role visibility rules.
		ItemsForUser(ctx context.Context, userID string) ([]Item, error)
	}

	service struct {
		repo       Repository
		userSvc    user.Service
		studentSvc student.Service
		classSvc   class.Service
		postRepo   feed.Repository
		log        core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	userSvc user.Service,
	studentSvc student.Service,
	classSvc class.Service,
	postRepo feed.Repository,
	log core.Logger,
) Service {
	return &service{
		repo:       repo,
		userSvc:    userSvc,
		studentSvc: studentSvc,
		classSvc:   classSvc,
		postRepo:   postRepo,
		log:        log,
	}
}

func (s service) CreateSchoolItem(ctx context.Context, ni NewSchoolItem) (SchoolItem, error) {
	if err := ni.Validate(); err != nil {
		return SchoolItem{}, err
	}
	item := SchoolItem{
		Type:        ni.Type,
		Title:       ni.Title,
		Description: ni.Description,
		Date:        ni.Date.UTC(),
		CreatedAt:   nowFunc().UTC(),
	}
	if err := s.repo.CreateSchoolItem(ctx, &item); err != nil {
		return SchoolItem{}, errors.Wrap(err, "creating school item")
	}
	return item, nil
}

func (s service) SchoolItems(ctx context.Context) ([]SchoolItem, error) {
	return s.repo.QueryAllSchoolItems(ctx)
}

func (s service) DeleteSchoolItem(ctx context.Context, id string) error {
	return s.repo.DeleteSchoolItem(ctx, id)
}

func (s service) CreateReminder(ctx context.Context, parent user.User, nr NewReminder) (Reminder, error) {
	if err := nr.Validate(); err != nil {
		return Reminder{}, err
	}
	std, err := s.studentSvc.GetByID(ctx, nr.StudentID)
	if err != nil {
		return Reminder{}, errors.Wrap(err, "resolving student")
	}
	rem := Reminder{
		ParentID:    parent.ID,
		TeacherID:   nr.TeacherID,
		StudentID:   std.ID,
		StudentName: std.Name,
		Title:       nr.Title,
		Description: nr.Description,
		Date:        nr.Date.UTC(),
		CreatedAt:   nowFunc().UTC(),
	}
	if err = s.repo.CreateReminder(ctx, &rem); err != nil {
		return Reminder{}, errors.Wrap(err, "creating reminder")
	}
	return rem, nil
}

func (s service) RemindersForTeacher(ctx context.Context, teacherID string) ([]Reminder, error) {
	return s.repo.GetRemindersByTeacher(ctx, teacherID)
}

func (s service) Acknowledge(ctx context.Context, actor user.User, reminderID string) (Reminder, error) {
	rem, err := s.repo.GetReminderByID(ctx, reminderID)
	if err != nil {
		return Reminder{}, err
	}
	if rem.TeacherID != actor.ID {
		return Reminder{}, ErrNotReminderOwner
	}
	if rem.Acknowledged {
		return rem, nil
	}
	return s.repo.AcknowledgeReminder(ctx, reminderID)
}

func (s service) ItemsForUser(ctx context.Context, userID string) ([]Item, error) {
	usr, err := s.userSvc.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var items []Item

	// 1. school items are globally visible
	schoolItems, err := s.repo.QueryAllSchoolItems(ctx)
	if err != nil {
		return nil, err
	}
	for _, si := range schoolItems {
		items = append(items, Item{
			ID:          schoolItemIDPrefix + si.ID,
			OriginalID:  si.ID,
			SourceType:  SourceSchoolItem,
			Title:       si.Title,
			Description: si.Description,
			Date:        si.Date,
		})
	}

	// 2. calendar posts within the caller's relevant class scope
	scope, linkedStudentIDs, err := s.relevantScope(ctx, usr)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.GetCalendarPosts(ctx)
	if err != nil {
		return nil, err
	}
	classNames := make(map[string]string)
	for _, post := range posts {
		if post.EventDate == nil {
			continue
		}
		if !class.IsMaster(post.ClassID) && !scope[post.ClassID] {
			continue
		}
		if !postVisible(post, usr, linkedStudentIDs) {
			continue
		}
		className, err := s.classNameFor(ctx, post, classNames)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{
			ID:          classPostIDPrefix + post.ID,
			OriginalID:  post.ID,
			SourceType:  SourceClassPost,
			Title:       post.Title,
			Description: post.Content,
			Date:        *post.EventDate,
			AuthorName:  post.AuthorName,
			ClassName:   className,
			IsPrivate:   post.Privacy == feed.PrivacySpecificRecipients,
		})
	}

	// 3. reminders addressed to the requesting teacher, always private
	if usr.IsTeacher() {
		rems, err := s.repo.GetRemindersByTeacher(ctx, usr.ID)
		if err != nil {
			return nil, err
		}
		for _, rem := range rems {
			items = append(items, Item{
				ID:          reminderIDPrefix + rem.ID,
				OriginalID:  rem.ID,
				SourceType:  SourceParentReminder,
				Title:       "Reminder: " + rem.Title + " (for " + rem.StudentName + ")",
				Description: rem.Description,
				Date:        rem.Date,
				StudentName: rem.StudentName,
				IsPrivate:   true,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Date.Before(items[j].Date) })
	return items, nil
}

// relevantScope computes the class ids the caller may see events from, plus
// the student ids linked to the caller (own record or children).
func (s service) relevantScope(ctx context.Context, usr user.User) (map[string]bool, []string, error) {
	scope := map[string]bool{class.MasterClassID: true}

	switch {
	case usr.IsAdmin():
		classes, err := s.classSvc.QueryAll(ctx)
		if err != nil {
			return nil, nil, err
		}
		for _, cls := range classes {
			scope[cls.ID] = true
		}
		return scope, nil, nil

	case usr.IsTeacher():
		for _, id := range usr.ClassIDs {
			scope[id] = true
		}
		return scope, nil, nil

	case usr.IsParent():
		for _, childID := range usr.ChildStudentIDs {
			std, err := s.studentSvc.GetByID(ctx, childID)
			if err != nil {
				if errors.Cause(err) == student.ErrNotFound {
					continue
				}
				return nil, nil, err
			}
			if std.ClassID != "" {
				scope[std.ClassID] = true
			}
		}
		return scope, usr.ChildStudentIDs, nil

	case usr.IsStudentUser() && usr.StudentID != "":
		std, err := s.studentSvc.GetByID(ctx, usr.StudentID)
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return scope, nil, nil
			}
			return nil, nil, err
		}
		if std.ClassID != "" {
			scope[std.ClassID] = true
		}
		return scope, []string{usr.StudentID}, nil
	}
	return scope, nil, nil
}

// postVisible refines visibility of a calendar post within the caller's
// scope.
func postVisible(post feed.Post, usr user.User, linkedStudentIDs []string) bool {
	// school-wide posts are visible to everyone
	if class.IsMaster(post.ClassID) {
		return true
	}
	// admins see everything; teachers always see their own posts
	if usr.IsAdmin() || post.AuthorID == usr.ID {
		return true
	}
	if usr.IsTeacher() {
		// another teacher's class post
		return post.Privacy == feed.PrivacyPublicClass
	}
	if post.Privacy == feed.PrivacyPublicClass {
		return true
	}
	if post.Privacy == feed.PrivacySpecificRecipients {
		if core.ContainsID(post.TargetUserIDs, usr.ID) {
			return true
		}
		for _, stdID := range linkedStudentIDs {
			if core.ContainsID(post.TargetStudentIDs, stdID) {
				return true
			}
		}
	}
	return false
}

// classNameFor resolves the class label of a calendar post; school-wide
// announcements are labeled SchoolWideClassName.
func (s service) classNameFor(ctx context.Context, post feed.Post, cache map[string]string) (string, error) {
	if class.IsMaster(post.ClassID) && post.Type != feed.TypeClassUpdate {
		return SchoolWideClassName, nil
	}
	if name, ok := cache[post.ClassID]; ok {
		return name, nil
	}
	cls, err := s.classSvc.GetByID(ctx, post.ClassID)
	if err != nil {
		if errors.Cause(err) == class.ErrNotFound {
			cache[post.ClassID] = ""
			return "", nil
		}
		return "", err
	}
	cache[post.ClassID] = cls.Name
	return cls.Name, nil
}
