//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v4"

	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/domain/ports/repository"
)

type fixture struct {
	author, reader *model.User
	topic          *model.Topic
	post           *model.Post
}

func setupForum(t *testing.T) fixture {
	t.Helper()
	cleanup(t)
	ctx := context.Background()
	users := NewUserRepo(testPool)
	topics := NewTopicRepo(testPool)
	posts := NewPostRepo(testPool)

	author, err := users.Create(ctx, nil, "alice")
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	reader, err := users.Create(ctx, nil, "bob")
	if err != nil {
		t.Fatalf("create reader: %v", err)
	}
	topic, err := topics.Create(ctx, nil, "Hello world", "hello-world")
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	post, err := posts.Create(ctx, nil, author.ID, &model.NewPost{Raw: "first post of the topic", TopicID: topic.ID})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return fixture{author: author, reader: reader, topic: topic, post: post}
}

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	f := setupForum(t)
	ctx := context.Background()
	repo := NewUserRepo(testPool)

	got, err := repo.FindByID(ctx, nil, f.author.ID)
	if err != nil || got.Username != "alice" {
		t.Fatalf("FindByID = %+v, %v", got, err)
	}
	if _, err := repo.FindByID(ctx, nil, 9999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Create(ctx, nil, "alice"); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestChatBindingRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	f := setupForum(t)
	ctx := context.Background()
	repo := NewChatBindingRepo(testPool)

	t.Run("should report unbound chats as not found", func(t *testing.T) {
		if _, err := repo.FindUserIDByChatID(ctx, nil, "555"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := repo.FindByUserID(ctx, nil, f.reader.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should upsert and resolve both ways", func(t *testing.T) {
		if err := repo.Save(ctx, nil, &model.ChatBinding{UserID: f.reader.ID, ChatID: "555"}); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := repo.Save(ctx, nil, &model.ChatBinding{UserID: f.reader.ID, ChatID: "777"}); err != nil {
			t.Fatalf("second Save: %v", err)
		}
		b, err := repo.FindByUserID(ctx, nil, f.reader.ID)
		if err != nil || b.ChatID != "777" {
			t.Fatalf("FindByUserID = %+v, %v", b, err)
		}
		uid, err := repo.FindUserIDByChatID(ctx, nil, "777")
		if err != nil || uid != f.reader.ID {
			t.Fatalf("FindUserIDByChatID = %d, %v", uid, err)
		}
		if _, err := repo.FindUserIDByChatID(ctx, nil, "555"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("old chat id must no longer resolve, got %v", err)
		}
	})
}

func TestPostRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	f := setupForum(t)
	ctx := context.Background()
	repo := NewPostRepo(testPool)
	tm := NewTxManager(testPool)

	t.Run("should find by id and by topic number", func(t *testing.T) {
		byID, err := repo.FindByID(ctx, nil, f.post.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if byID.TopicSlug != "hello-world" || byID.PostNumber != 1 {
			t.Errorf("unexpected post %+v", byID)
		}
		byNumber, err := repo.FindByTopicAndNumber(ctx, nil, f.topic.ID, 1)
		if err != nil || byNumber.ID != f.post.ID {
			t.Fatalf("FindByTopicAndNumber = %+v, %v", byNumber, err)
		}
		if _, err := repo.FindByID(ctx, nil, 424242); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should number concurrent replies without gaps", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 5)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
					_, err := repo.Create(ctx, tx, f.reader.ID, &model.NewPost{Raw: "a reply from telegram", TopicID: f.topic.ID, ReplyToPostNumber: 1})
					return err
				})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("concurrent create: %v", err)
			}
		}
		if _, err := repo.FindByTopicAndNumber(ctx, nil, f.topic.ID, 6); err != nil {
			t.Errorf("expected post number 6 to exist: %v", err)
		}
	})

	t.Run("should refuse replies to missing topics", func(t *testing.T) {
		_, err := repo.Create(ctx, nil, f.reader.ID, &model.NewPost{Raw: "x", TopicID: 9999})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPostActionRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	f := setupForum(t)
	ctx := context.Background()
	repo := NewPostActionRepo(testPool)

	like := &model.PostAction{PostID: f.post.ID, UserID: f.reader.ID, ActionType: model.PostActionLike}
	if err := repo.Create(ctx, nil, like); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if like.ID == 0 || like.CreatedAt.IsZero() {
		t.Errorf("Create must fill id and created_at: %+v", like)
	}

	dup := &model.PostAction{PostID: f.post.ID, UserID: f.reader.ID, ActionType: model.PostActionLike}
	if err := repo.Create(ctx, nil, dup); !errors.Is(err, domain.ErrAlreadyActed) {
		t.Fatalf("expected ErrAlreadyActed, got %v", err)
	}
	n, err := repo.CountByUser(ctx, nil, f.reader.ID, f.post.ID, model.PostActionLike)
	if err != nil || n != 1 {
		t.Fatalf("CountByUser = %d, %v; want exactly one like", n, err)
	}

	found, err := repo.FindActive(ctx, nil, f.reader.ID, f.post.ID, model.PostActionLike)
	if err != nil || found.ID != like.ID {
		t.Fatalf("FindActive = %+v, %v", found, err)
	}
	if err := repo.Remove(ctx, nil, like.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := repo.Remove(ctx, nil, like.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Remove should be ErrNotFound, got %v", err)
	}
	if _, err := repo.FindActive(ctx, nil, f.reader.ID, f.post.ID, model.PostActionLike); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after removal, got %v", err)
	}
	if err := repo.Create(ctx, nil, &model.PostAction{PostID: f.post.ID, UserID: f.reader.ID, ActionType: model.PostActionLike}); err != nil {
		t.Errorf("liking again after removal should work: %v", err)
	}
}
