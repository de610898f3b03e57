// Package blog is a small store used to demonstrate a generated fixture
// engine. Regenerate the engine with:
//
//	cd example/blog && itrunner generate
package blog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
)

//go:embed schema.sql
var DDL string

var ErrNotFound = errors.New("not found")

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Post struct {
	ID       int64  `json:"id"`
	AuthorID int64  `json:"author_id"`
	Title    string `json:"title"`
}

type Comment struct {
	ID     int64  `json:"id"`
	PostID int64  `json:"post_id"`
	Body   string `json:"body"`
}

type Store struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question).RunWith(db),
	}
}

func (s *Store) CreateUser(ctx context.Context, name, email string) (*User, error) {
	res, err := s.qb.Insert("users").Columns("name", "email").Values(name, email).ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &User{ID: id, Name: name, Email: email}, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	var u User
	err := s.qb.Select("id", "name", "email").From("users").Where(squirrel.Eq{"id": id}).
		QueryRowContext(ctx).Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes the user together with their posts and the comments
// on them.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.qb.Delete("users").Where(squirrel.Eq{"id": id}).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) PublishPost(ctx context.Context, authorID int64, title string) (*Post, error) {
	if _, err := s.GetUser(ctx, authorID); err != nil {
		return nil, err
	}
	res, err := s.qb.Insert("posts").Columns("author_id", "title").Values(authorID, title).ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to publish post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Post{ID: id, AuthorID: authorID, Title: title}, nil
}

// PostsByAuthor returns the titles of an author's posts, oldest first.
func (s *Store) PostsByAuthor(ctx context.Context, authorID int64) ([]string, error) {
	rows, err := s.qb.Select("title").From("posts").Where(squirrel.Eq{"author_id": authorID}).
		OrderBy("id").QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// AddComment comments on an existing post.
func (s *Store) AddComment(ctx context.Context, postID int64, body string) (*Comment, error) {
	var n int
	err := s.qb.Select("COUNT(*)").From("posts").Where(squirrel.Eq{"id": postID}).
		QueryRowContext(ctx).Scan(&n)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("post %d: %w", postID, ErrNotFound)
	}
	res, err := s.qb.Insert("comments").Columns("post_id", "body").Values(postID, body).ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Comment{ID: id, PostID: postID, Body: body}, nil
}
