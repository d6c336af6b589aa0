package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"social-publisher/domain/model"
)

// ScheduledPostRepository implements post persistence over PostgreSQL. Status
// transitions are conditional updates guarded on status='scheduled'; the affected
// row count tells the caller whether it won the transition.
type ScheduledPostRepository struct{ db *sql.DB }

func NewScheduledPostRepository(db *sql.DB) *ScheduledPostRepository {
	return &ScheduledPostRepository{db: db}
}

const postColumns = `id, user_id, title, description, content_type, platform, status, scheduled_at, content_url, thumbnail_url, tags, retry_count, max_retries, platform_post_id, platform_metadata, publishing_error, created_at, updated_at`

func (r *ScheduledPostRepository) Create(ctx context.Context, post *model.ScheduledPost) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	meta, err := marshalMetadata(post.PlatformMetadata)
	if err != nil {
		return err
	}
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO scheduled_posts (user_id, title, description, content_type, platform, status, scheduled_at, content_url, thumbnail_url, tags, retry_count, max_retries, platform_post_id, platform_metadata, publishing_error, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		 RETURNING id`,
		post.UserID, post.Title, post.Description, post.ContentType, string(post.Platform),
		post.Status, post.ScheduledAt, post.ContentURL, post.ThumbnailURL,
		strings.Join(post.Tags, ","), post.RetryCount, post.MaxRetries,
		post.PlatformPostID, meta, post.PublishingError, post.CreatedAt, post.UpdatedAt)
	return row.Scan(&post.ID)
}

func (r *ScheduledPostRepository) GetByID(ctx context.Context, id int64) (*model.ScheduledPost, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM scheduled_posts WHERE id=$1`, id)
	return scanPost(row)
}

func (r *ScheduledPostRepository) GetByUser(ctx context.Context, userID, status string) ([]*model.ScheduledPost, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+postColumns+` FROM scheduled_posts WHERE user_id=$1 ORDER BY scheduled_at DESC`, userID)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+postColumns+` FROM scheduled_posts WHERE user_id=$1 AND status=$2 ORDER BY scheduled_at DESC`, userID, status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// GetDue selects scheduled posts inside the trailing due window. Terminal posts are
// excluded at query time; this is what makes overlapping dispatch passes safe.
func (r *ScheduledPostRepository) GetDue(ctx context.Context, from, to time.Time, limit int) ([]*model.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM scheduled_posts
		 WHERE status='scheduled' AND scheduled_at >= $1 AND scheduled_at <= $2
		 ORDER BY scheduled_at ASC LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *ScheduledPostRepository) GetPublishedSince(ctx context.Context, userID string, platform model.Platform, since time.Time) ([]*model.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM scheduled_posts
		 WHERE user_id=$1 AND platform=$2 AND status='published' AND scheduled_at >= $3
		 ORDER BY scheduled_at DESC`, userID, string(platform), since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *ScheduledPostRepository) MarkPublished(ctx context.Context, id int64, platformPostID, url string, metadata map[string]string) (bool, error) {
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadata["url"] = url
	meta, err := marshalMetadata(metadata)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_posts SET status='published', platform_post_id=$1, platform_metadata=$2, publishing_error=NULL, updated_at=$3
		 WHERE id=$4 AND status='scheduled'`,
		platformPostID, meta, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *ScheduledPostRepository) MarkCancelled(ctx context.Context, id int64, publishingError string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_posts SET status='cancelled', publishing_error=$1, updated_at=$2
		 WHERE id=$3 AND status IN ('scheduled','draft')`,
		publishingError, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *ScheduledPostRepository) IncrementRetry(ctx context.Context, id int64, publishingError string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_posts SET retry_count=retry_count+1, publishing_error=$1, updated_at=$2
		 WHERE id=$3 AND status='scheduled'`,
		publishingError, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *ScheduledPostRepository) Reschedule(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_posts SET scheduled_at=$1, retry_count=0, publishing_error=NULL, updated_at=$2
		 WHERE id=$3 AND status='scheduled'`,
		at, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPostRow(s rowScanner) (*model.ScheduledPost, error) {
	post := &model.ScheduledPost{}
	var platform, tags string
	var meta []byte
	var pubErr sql.NullString
	if err := s.Scan(&post.ID, &post.UserID, &post.Title, &post.Description, &post.ContentType,
		&platform, &post.Status, &post.ScheduledAt, &post.ContentURL, &post.ThumbnailURL,
		&tags, &post.RetryCount, &post.MaxRetries, &post.PlatformPostID, &meta, &pubErr,
		&post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, err
	}
	post.Platform = model.Platform(platform)
	if tags != "" {
		post.Tags = strings.Split(tags, ",")
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &post.PlatformMetadata); err != nil {
			return nil, err
		}
	}
	if pubErr.Valid {
		post.PublishingError = &pubErr.String
	}
	return post, nil
}

func scanPost(row *sql.Row) (*model.ScheduledPost, error) {
	post, err := scanPostRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return post, err
}

func scanPosts(rows *sql.Rows) ([]*model.ScheduledPost, error) {
	var out []*model.ScheduledPost
	for rows.Next() {
		post, err := scanPostRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, post)
	}
	return out, rows.Err()
}
