package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"social-publisher/domain/model"
)

// CredentialRepository implements credential persistence over PostgreSQL.
type CredentialRepository struct{ db *sql.DB }

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

const credentialColumns = `id, user_id, platform, account_id, account_name, access_token, refresh_token, expires_at, scopes, metadata, active, created_at, updated_at`

func (r *CredentialRepository) GetActive(ctx context.Context, userID string, platform model.Platform) ([]*model.PlatformCredential, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM platform_credentials
		 WHERE user_id=$1 AND platform=$2 AND active=TRUE
		 ORDER BY updated_at DESC`, userID, string(platform))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCredentials(rows)
}

func (r *CredentialRepository) GetByUser(ctx context.Context, userID string) ([]*model.PlatformCredential, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM platform_credentials
		 WHERE user_id=$1 ORDER BY platform, updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCredentials(rows)
}

func (r *CredentialRepository) Upsert(ctx context.Context, cred *model.PlatformCredential) error {
	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now
	meta, err := marshalMetadata(cred.Metadata)
	if err != nil {
		return err
	}
	q := `INSERT INTO platform_credentials (user_id, platform, account_id, account_name, access_token, refresh_token, expires_at, scopes, metadata, active, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		  ON CONFLICT (user_id, platform, account_id) DO UPDATE SET
			account_name=EXCLUDED.account_name,
			access_token=EXCLUDED.access_token,
			refresh_token=EXCLUDED.refresh_token,
			expires_at=EXCLUDED.expires_at,
			scopes=EXCLUDED.scopes,
			metadata=EXCLUDED.metadata,
			active=EXCLUDED.active,
			updated_at=EXCLUDED.updated_at`
	_, err = r.db.ExecContext(ctx, q,
		cred.UserID, string(cred.Platform), cred.AccountID, cred.AccountName,
		cred.AccessToken, cred.RefreshToken, cred.ExpiresAt,
		strings.Join(cred.Scopes, " "), meta, cred.Active, cred.CreatedAt, cred.UpdatedAt)
	return err
}

func (r *CredentialRepository) UpdateTokens(ctx context.Context, cred *model.PlatformCredential) error {
	cred.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE platform_credentials SET access_token=$1, refresh_token=$2, expires_at=$3, updated_at=$4 WHERE id=$5`,
		cred.AccessToken, cred.RefreshToken, cred.ExpiresAt, cred.UpdatedAt, cred.ID)
	return err
}

func (r *CredentialRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE platform_credentials SET active=FALSE, updated_at=$1 WHERE id=$2`,
		time.Now().UTC(), id)
	return err
}

func scanCredentials(rows *sql.Rows) ([]*model.PlatformCredential, error) {
	var out []*model.PlatformCredential
	for rows.Next() {
		cred := &model.PlatformCredential{}
		var platform, scopes string
		var exp sql.NullTime
		var meta []byte
		if err := rows.Scan(&cred.ID, &cred.UserID, &platform, &cred.AccountID, &cred.AccountName,
			&cred.AccessToken, &cred.RefreshToken, &exp, &scopes, &meta, &cred.Active,
			&cred.CreatedAt, &cred.UpdatedAt); err != nil {
			return nil, err
		}
		cred.Platform = model.Platform(platform)
		if exp.Valid {
			t := exp.Time
			cred.ExpiresAt = &t
		}
		cred.Scopes = splitScopes(scopes)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &cred.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, cred)
	}
	return out, rows.Err()
}

func splitScopes(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

func marshalMetadata(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}
