package postgres

import (
	"context"
	"database/sql"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore implements driven.SettingsStore using PostgreSQL.
// The configuration is a single row; provider API keys are encrypted at
// rest when an encryptor is configured.
type SettingsStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewSettingsStore creates a new SettingsStore. The encryptor may be nil,
// in which case API keys are stored in plaintext.
func NewSettingsStore(db *DB, encryptor *SecretEncryptor) *SettingsStore {
	return &SettingsStore{db: db, encryptor: encryptor}
}

// GetAISettings retrieves the AI configuration
func (s *SettingsStore) GetAISettings(ctx context.Context) (*domain.AISettings, error) {
	query := `
		SELECT embedding_provider, embedding_model, embedding_api_key, embedding_base_url,
			   generative_provider, generative_model, generative_api_key, generative_base_url,
			   updated_at, updated_by
		FROM ai_settings
		WHERE id = 1
	`

	var settings domain.AISettings
	var embProvider, genProvider string
	var embKey, genKey []byte

	err := s.db.QueryRowContext(ctx, query).Scan(
		&embProvider,
		&settings.Embedding.Model,
		&embKey,
		&settings.Embedding.BaseURL,
		&genProvider,
		&settings.Generative.Model,
		&genKey,
		&settings.Generative.BaseURL,
		&settings.UpdatedAt,
		&settings.UpdatedBy,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	settings.Embedding.Provider = domain.AIProvider(embProvider)
	settings.Generative.Provider = domain.AIProvider(genProvider)

	if settings.Embedding.APIKey, err = s.decodeKey(embKey); err != nil {
		return nil, err
	}
	if settings.Generative.APIKey, err = s.decodeKey(genKey); err != nil {
		return nil, err
	}

	return &settings, nil
}

// SaveAISettings stores the AI configuration
func (s *SettingsStore) SaveAISettings(ctx context.Context, settings *domain.AISettings) error {
	embKey, err := s.encodeKey(settings.Embedding.APIKey)
	if err != nil {
		return err
	}
	genKey, err := s.encodeKey(settings.Generative.APIKey)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ai_settings (id, embedding_provider, embedding_model, embedding_api_key, embedding_base_url,
								 generative_provider, generative_model, generative_api_key, generative_base_url,
								 updated_at, updated_by)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			embedding_provider = EXCLUDED.embedding_provider,
			embedding_model = EXCLUDED.embedding_model,
			embedding_api_key = EXCLUDED.embedding_api_key,
			embedding_base_url = EXCLUDED.embedding_base_url,
			generative_provider = EXCLUDED.generative_provider,
			generative_model = EXCLUDED.generative_model,
			generative_api_key = EXCLUDED.generative_api_key,
			generative_base_url = EXCLUDED.generative_base_url,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
	`

	_, err = s.db.ExecContext(ctx, query,
		string(settings.Embedding.Provider),
		settings.Embedding.Model,
		embKey,
		settings.Embedding.BaseURL,
		string(settings.Generative.Provider),
		settings.Generative.Model,
		genKey,
		settings.Generative.BaseURL,
		settings.UpdatedAt,
		settings.UpdatedBy,
	)
	return err
}

func (s *SettingsStore) encodeKey(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	if s.encryptor == nil {
		return []byte(key), nil
	}
	return s.encryptor.EncryptString(key)
}

func (s *SettingsStore) decodeKey(blob []byte) (string, error) {
	if len(blob) == 0 {
		return "", nil
	}
	if s.encryptor == nil {
		return string(blob), nil
	}
	return s.encryptor.DecryptString(blob)
}
