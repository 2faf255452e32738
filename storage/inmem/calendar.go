package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/calendar"
)

type calendarRepository struct {
	db *DB
}

func NewCalendarRepository(db *DB) calendar.Repository {
	return &calendarRepository{db: db}
}

func (repo *calendarRepository) CreateSchoolItem(_ context.Context, item *calendar.SchoolItem) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	item.ID = newID()
	row := *item
	repo.db.schoolItems[row.ID] = &row
	return nil
}

func (repo *calendarRepository) QueryAllSchoolItems(_ context.Context) ([]calendar.SchoolItem, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]calendar.SchoolItem, 0, len(repo.db.schoolItems))
	for _, item := range repo.db.schoolItems {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Date.Before(items[j].Date) })
	return items, nil
}

func (repo *calendarRepository) DeleteSchoolItem(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.schoolItems[id]; !ok {
		return calendar.ErrItemNotFound
	}
	delete(repo.db.schoolItems, id)
	return nil
}

func (repo *calendarRepository) CreateReminder(_ context.Context, rem *calendar.Reminder) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rem.ID = newID()
	row := *rem
	repo.db.reminders[row.ID] = &row
	return nil
}

func (repo *calendarRepository) GetReminderByID(_ context.Context, id string) (calendar.Reminder, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rem, ok := repo.db.reminders[id]; ok {
		return *rem, nil
	}
	return calendar.Reminder{}, calendar.ErrReminderNotFound
}

func (repo *calendarRepository) GetRemindersByTeacher(_ context.Context, teacherID string) ([]calendar.Reminder, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var rems []calendar.Reminder
	for _, rem := range repo.db.reminders {
		if rem.TeacherID == teacherID {
			rems = append(rems, *rem)
		}
	}
	sort.Slice(rems, func(i, j int) bool { return rems[i].Date.Before(rems[j].Date) })
	return rems, nil
}

func (repo *calendarRepository) AcknowledgeReminder(_ context.Context, id string) (calendar.Reminder, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rem, ok := repo.db.reminders[id]
	if !ok {
		return calendar.Reminder{}, calendar.ErrReminderNotFound
	}
	rem.Acknowledged = true
	return *rem, nil
}
