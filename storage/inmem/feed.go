package inmemdb

import (
	"context"

	"github.com/trezcool/darasa/core/feed"
)

type postRepository struct {
	db *DB
}

func NewPostRepository(db *DB) feed.Repository {
	return &postRepository{db: db}
}

func (repo *postRepository) CreatePost(_ context.Context, post *feed.Post) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	post.ID = newID()
	row := *post
	// newest first
	repo.db.posts = append([]*feed.Post{&row}, repo.db.posts...)
	return nil
}

func (repo *postRepository) GetPostByID(_ context.Context, id string) (feed.Post, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, post := range repo.db.posts {
		if post.ID == id {
			return *post, nil
		}
	}
	return feed.Post{}, feed.ErrNotFound
}

func (repo *postRepository) GetPostsByClass(_ context.Context, classID string) ([]feed.Post, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var posts []feed.Post
	for _, post := range repo.db.posts {
		if post.ClassID == classID {
			posts = append(posts, *post)
		}
	}
	return posts, nil
}

func (repo *postRepository) GetCalendarPosts(_ context.Context) ([]feed.Post, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var posts []feed.Post
	for _, post := range repo.db.posts {
		if post.IsCalendarEvent {
			posts = append(posts, *post)
		}
	}
	return posts, nil
}
