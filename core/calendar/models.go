package calendar

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// School item types.
const (
	SchoolItemAcademic = "academic"
	SchoolItemEvent    = "event"
)

// Item source types.
const (
	SourceSchoolItem     = "school_item"
	SourceClassPost      = "class_post"
	SourceParentReminder = "parent_reminder"
)

// Display-item id prefixes, one per source.
const (
	schoolItemIDPrefix = "sch-"
	classPostIDPrefix  = "post-"
	reminderIDPrefix   = "ptr-"
)

// SchoolWideClassName labels school-wide announcements on the calendar.
const SchoolWideClassName = "School-Wide"

var nowFunc = time.Now // mockable

// SchoolItem is an admin-curated entry of the school calendar, visible to
// everyone.
type SchoolItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // academic | event
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"` // UTC

	CreatedAt time.Time `json:"created_at"` // UTC
}

// Reminder is a parent's note to a teacher about one of their children. The
// student name is snapshotted at creation time.
type Reminder struct {
	ID          string `json:"id"`
	ParentID    string `json:"parent_id"`
	TeacherID   string `json:"teacher_id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Title       string `json:"title"`
	Description string `json:"description"`

	Date         time.Time `json:"date"` // UTC
	Acknowledged bool      `json:"acknowledged"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// Item is a unified calendar entry merged from any of the three sources.
type Item struct {
	ID          string    `json:"id"` // prefixed per source, eg. "post-<id>"
	OriginalID  string    `json:"original_id"`
	SourceType  string    `json:"source_type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`

	AuthorName  string `json:"author_name,omitempty"`
	ClassName   string `json:"class_name,omitempty"`
	StudentName string `json:"student_name,omitempty"`
	IsPrivate   bool   `json:"is_private"`
}

// NewSchoolItem contains information needed to create a new SchoolItem.
type NewSchoolItem struct {
	Type        string    `json:"type" validate:"required,oneof=academic event"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Date        time.Time `json:"date" validate:"required"`
}

func (ni *NewSchoolItem) Validate() error {
	ni.Title = core.CleanString(ni.Title)
	ni.Description = core.CleanString(ni.Description)
	return core.Validate.Struct(ni)
}

// NewReminder contains information needed to create a new Reminder.
type NewReminder struct {
	TeacherID   string    `json:"teacher_id" validate:"required"`
	StudentID   string    `json:"student_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Date        time.Time `json:"date" validate:"required"`
}

func (nr *NewReminder) Validate() error {
	nr.Title = core.CleanString(nr.Title)
	nr.Description = core.CleanString(nr.Description)
	return core.Validate.Struct(nr)
}
