package feed

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("post not found")
)

type (
	// Repository provides access to the posts storage; posts are kept
	// newest-first.
	Repository interface {
		CreatePost(ctx context.Context, post *Post) error
		GetPostByID(ctx context.Context, id string) (Post, error)
		GetPostsByClass(ctx context.Context, classID string) ([]Post, error)
		// GetCalendarPosts returns the posts flagged as calendar events.
		GetCalendarPosts(ctx context.Context) ([]Post, error)
	}

	Service interface {
		Create(ctx context.Context, author user.User, np NewPost) (Post, error)
		GetByID(ctx context.Context, id string) (Post, error)
		// ByClass returns the class feed visible to viewer, newest first.
		ByClass(ctx context.Context, classID string, viewer user.User) ([]Post, error)
		// Global returns the school-wide feed visible to viewer, newest first.
		Global(ctx context.Context, viewer user.User) ([]Post, error)
	}

	service struct {
		repo Repository
		log  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, log core.Logger) Service {
	return &service{repo: repo, log: log}
}

func (s service) Create(ctx context.Context, author user.User, np NewPost) (Post, error) {
	if err := np.Validate(); err != nil {
		return Post{}, err
	}

	// Admin announcements always land on the school-wide feed, whatever
	// class was asked for.
	classID := np.ClassID
	if author.IsAdmin() && IsAnnouncementType(np.Type) {
		classID = class.MasterClassID
	}

	privacy := np.Privacy
	if privacy == "" {
		privacy = PrivacyPublicClass
	}
	targetUserIDs := core.CopyIDs(np.TargetUserIDs)
	targetStudentIDs := core.CopyIDs(np.TargetStudentIDs)
	if privacy != PrivacySpecificRecipients {
		targetUserIDs = nil
		targetStudentIDs = nil
	}

	eventDate := np.EventDate
	if !np.IsCalendarEvent {
		eventDate = nil
	}

	post := Post{
		ClassID:          classID,
		Type:             np.Type,
		Title:            np.Title,
		Content:          np.Content,
		MediaURL:         np.MediaURL,
		MediaType:        np.MediaType,
		AuthorID:         author.ID,
		AuthorName:       author.Name,
		AuthorAvatarURL:  author.AvatarURL,
		Privacy:          privacy,
		TargetUserIDs:    targetUserIDs,
		TargetStudentIDs: targetStudentIDs,
		IsCalendarEvent:  np.IsCalendarEvent,
		EventDate:        eventDate,
		Timestamp:        nowFunc().UTC(),
	}
	if err := s.repo.CreatePost(ctx, &post); err != nil {
		return Post{}, errors.Wrap(err, "creating post")
	}
	return post, nil
}

func (s service) GetByID(ctx context.Context, id string) (Post, error) {
	return s.repo.GetPostByID(ctx, id)
}

func (s service) ByClass(ctx context.Context, classID string, viewer user.User) ([]Post, error) {
	posts, err := s.repo.GetPostsByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	visible := posts[:0:0]
	for _, post := range posts {
		if VisibleTo(post, viewer) {
			visible = append(visible, post)
		}
	}
	return visible, nil
}

func (s service) Global(ctx context.Context, viewer user.User) ([]Post, error) {
	return s.ByClass(ctx, class.MasterClassID, viewer)
}

// VisibleTo reports whether viewer may see post. Public posts are visible to
// everyone in the class; targeted posts only to their author, admins, the
// targeted users, the targeted students and the parents of targeted students.
func VisibleTo(post Post, viewer user.User) bool {
	if post.Privacy != PrivacySpecificRecipients {
		return true
	}
	if viewer.IsAdmin() || viewer.ID == post.AuthorID {
		return true
	}
	if core.ContainsID(post.TargetUserIDs, viewer.ID) {
		return true
	}
	if viewer.StudentID != "" && core.ContainsID(post.TargetStudentIDs, viewer.StudentID) {
		return true
	}
	for _, childID := range viewer.ChildStudentIDs {
		if core.ContainsID(post.TargetStudentIDs, childID) {
			return true
		}
	}
	return false
}
