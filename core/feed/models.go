package feed

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// Post types.
const (
	TypeClassUpdate          = "CLASS_UPDATE"
	TypeAcademicAnnouncement = "ACADEMIC_ANNOUNCEMENT"
	TypeEventAnnouncement    = "EVENT_ANNOUNCEMENT"
)

// Privacy levels.
const (
	// PrivacyPublicClass makes a post visible to everyone in its class.
	PrivacyPublicClass = "PUBLIC_CLASS"
	// PrivacySpecificRecipients restricts a post to its author, admins,
	// targeted users and parents of targeted students.
	PrivacySpecificRecipients = "SPECIFIC_RECIPIENTS"
)

var (
	AllTypes          = []string{TypeClassUpdate, TypeAcademicAnnouncement, TypeEventAnnouncement}
	AllPrivacyLevels  = []string{PrivacyPublicClass, PrivacySpecificRecipients}
	announcementTypes = map[string]bool{TypeAcademicAnnouncement: true, TypeEventAnnouncement: true}
)

func IsAnnouncementType(typ string) bool { return announcementTypes[typ] }

var nowFunc = time.Now // mockable

// Media types attachable to a post.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

type Post struct {
	ID      string `json:"id"`
	ClassID string `json:"class_id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`

	MediaURL  string `json:"media_url,omitempty"`
	MediaType string `json:"media_type,omitempty"` // image | video

	// Author identity is snapshotted at posting time; it does not follow
	// later profile edits.
	AuthorID        string `json:"author_id"`
	AuthorName      string `json:"author_name"`
	AuthorAvatarURL string `json:"author_avatar_url"`

	Privacy          string   `json:"privacy"`
	TargetUserIDs    []string `json:"target_user_ids,omitempty"`
	TargetStudentIDs []string `json:"target_student_ids,omitempty"`

	IsCalendarEvent bool       `json:"is_calendar_event"`
	EventDate       *time.Time `json:"event_date,omitempty"`

	Timestamp time.Time `json:"timestamp"` // UTC
}

// NewPost contains information needed to publish a new Post.
type NewPost struct {
	ClassID string `json:"class_id" validate:"required"`
	Type    string `json:"type" validate:"required,posttype"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`

	MediaURL  string `json:"media_url" validate:"omitempty,url"`
	MediaType string `json:"media_type" validate:"required_with=MediaURL,omitempty,oneof=image video"`

	Privacy          string   `json:"privacy" validate:"omitempty,privacylevel"`
	TargetUserIDs    []string `json:"target_user_ids"`
	TargetStudentIDs []string `json:"target_student_ids"`

	IsCalendarEvent bool       `json:"is_calendar_event"`
	EventDate       *time.Time `json:"event_date"`
}

func (np *NewPost) Validate() error {
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	return core.Validate.Struct(np)
}
