package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"social-publisher/domain/model"
)

func postRows(t *testing.T) *sqlmock.Rows {
	t.Helper()
	return sqlmock.NewRows([]string{
		"id", "user_id", "title", "description", "content_type", "platform",
		"status", "scheduled_at", "content_url", "thumbnail_url", "tags",
		"retry_count", "max_retries", "platform_post_id", "platform_metadata",
		"publishing_error", "created_at", "updated_at",
	})
}

func TestScheduledPostRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repository := NewScheduledPostRepository(db)

	post := &model.ScheduledPost{
		UserID:      "user-1",
		Title:       "launch teaser",
		ContentType: model.ContentTypeVideo,
		Platform:    model.PlatformYouTube,
		Status:      model.PostStatusScheduled,
		ScheduledAt: time.Date(2026, 9, 5, 15, 0, 0, 0, time.UTC),
		ContentURL:  "https://cdn.example.com/teaser.mp4",
		Tags:        []string{"launch", "teaser"},
		MaxRetries:  3,
	}

	mock.ExpectQuery(`INSERT INTO scheduled_posts .+ RETURNING id`).
		WithArgs("user-1", "launch teaser", "", model.ContentTypeVideo, "youtube",
			model.PostStatusScheduled, post.ScheduledAt, post.ContentURL, "",
			"launch,teaser", 0, 3, "", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	require.NoError(t, repository.Create(context.Background(), post))
	require.Equal(t, int64(42), post.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledPostRepository_GetDue(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repository := NewScheduledPostRepository(db)

	from := time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	scheduledAt := from.Add(30 * time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM scheduled_posts\s+WHERE status='scheduled' AND scheduled_at >= \$1 AND scheduled_at <= \$2\s+ORDER BY scheduled_at ASC LIMIT \$3`).
		WithArgs(from, to, 50).
		WillReturnRows(postRows(t).
			AddRow(int64(1), "user-1", "due post", "", "text", "twitter",
				"scheduled", scheduledAt, "", "", "", 1, 3, "",
				[]byte(`{"likes":"5"}`), "previous failure", scheduledAt, scheduledAt))

	posts, err := repository.GetDue(context.Background(), from, to, 50)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, 1, posts[0].RetryCount)
	require.Equal(t, "5", posts[0].PlatformMetadata["likes"])
	require.NotNil(t, posts[0].PublishingError)
	require.Equal(t, "previous failure", *posts[0].PublishingError)
	require.Nil(t, posts[0].Tags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledPostRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repository := NewScheduledPostRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM scheduled_posts WHERE id=\$1`).
		WithArgs(int64(99)).
		WillReturnRows(postRows(t))

	post, err := repository.GetByID(context.Background(), 99)
	require.NoError(t, err)
	require.Nil(t, post)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledPostRepository_MarkPublished_WinsTransition(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repository := NewScheduledPostRepository(db)

	mock.ExpectExec(`UPDATE scheduled_posts SET status='published', platform_post_id=\$1, platform_metadata=\$2, publishing_error=NULL, updated_at=\$3\s+WHERE id=\$4 AND status='scheduled'`).
		WithArgs("ext-1", []byte(`{"url":"https://youtu.be/ext-1"}`), sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repository.MarkPublished(context.Background(), 5, "ext-1", "https://youtu.be/ext-1", nil)
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledPostRepository_MarkPublished_LosesTransition(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repository := NewScheduledPostRepository(db)

	mock.ExpectExec(`UPDATE scheduled_posts SET status='published'`).
		WithArgs("ext-1", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repository.MarkPublished(context.Background(), 6, "ext-1", "u", nil)
	require.NoError(t, err)
	require.False(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledPostRepository_MarkCancelled(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repository := NewScheduledPostRepository(db)

	mock.ExpectExec(`UPDATE scheduled_posts SET status='cancelled', publishing_error=\$1, updated_at=\$2\s+WHERE id=\$3 AND status IN \('scheduled','draft'\)`).
		WithArgs("token expired", sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repository.MarkCancelled(context.Background(), 7, "token expired")
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledPostRepository_IncrementRetry(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repository := NewScheduledPostRepository(db)

	mock.ExpectExec(`UPDATE scheduled_posts SET retry_count=retry_count\+1, publishing_error=\$1, updated_at=\$2\s+WHERE id=\$3 AND status='scheduled'`).
		WithArgs("503 from platform", sqlmock.AnyArg(), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repository.IncrementRetry(context.Background(), 8, "503 from platform")
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledPostRepository_Reschedule_ResetsRetries(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repository := NewScheduledPostRepository(db)

	at := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE scheduled_posts SET scheduled_at=\$1, retry_count=0, publishing_error=NULL, updated_at=\$2\s+WHERE id=\$3 AND status='scheduled'`).
		WithArgs(at, sqlmock.AnyArg(), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repository.Reschedule(context.Background(), 9, at)
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}
