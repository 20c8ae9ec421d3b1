// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_recordings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
	"github.com/rapidaai/voicenote/pkg/commons"
)

// Store persists finalized recordings. The session orchestrator never touches
// the store; the API layer saves the Recording returned by Stop. Rows hold the
// word/segment/media lists as JSON columns because they are written once and
// always read whole.
type Store interface {
	// Save stores a finalized recording.
	Save(ctx context.Context, recording *internal_type.Recording) error

	// Get retrieves one recording with its full transcript and media.
	Get(ctx context.Context, id string) (*internal_type.Recording, error)

	// List returns all recordings, newest first.
	List(ctx context.Context) ([]internal_type.Recording, error)

	// Rename updates the user-facing title, the only mutable field of a
	// finalized recording.
	Rename(ctx context.Context, id, title string) error

	// Delete removes a recording row. The audio file on disk is the caller's
	// responsibility.
	Delete(ctx context.Context, id string) error
}

// recordingRow is the persisted shape of a Recording.
type recordingRow struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Title         string    `gorm:"column:title"`
	Date          time.Time `gorm:"column:date"`
	Duration      float64   `gorm:"column:duration"`
	AudioLocation string    `gorm:"column:audio_location"`
	Words         []byte    `gorm:"column:words"`
	Segments      []byte    `gorm:"column:segments"`
	Media         []byte    `gorm:"column:media"`
	CreatedDate   time.Time `gorm:"column:created_date"`
	UpdatedDate   time.Time `gorm:"column:updated_date"`
}

func (recordingRow) TableName() string {
	return "recordings"
}

type gormStore struct {
	db     *gorm.DB
	logger commons.Logger
}

// NewStore creates a recording store over an opened gorm connection.
func NewStore(db *gorm.DB, logger commons.Logger) Store {
	return &gormStore{db: db, logger: logger}
}

// Migrate creates the recordings table when missing.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&recordingRow{})
}

func (s *gormStore) Save(ctx context.Context, recording *internal_type.Recording) error {
	row, err := toRow(recording)
	if err != nil {
		return err
	}
	now := time.Now()
	row.CreatedDate = now
	row.UpdatedDate = now

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to save recording %s: %w", recording.ID, err)
	}

	s.logger.Infof("saved recording: id=%s, duration=%.1fs, words=%d, media=%d",
		recording.ID, recording.Duration, len(recording.Words), len(recording.Media))
	return nil
}

func (s *gormStore) Get(ctx context.Context, id string) (*internal_type.Recording, error) {
	var row recordingRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, fmt.Errorf("recording not found: %s: %w", id, err)
	}
	return fromRow(&row)
}

func (s *gormStore) List(ctx context.Context) ([]internal_type.Recording, error) {
	var rows []recordingRow
	if err := s.db.WithContext(ctx).Order("date DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}

	out := make([]internal_type.Recording, 0, len(rows))
	for i := range rows {
		recording, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *recording)
	}
	return out, nil
}

func (s *gormStore) Rename(ctx context.Context, id, title string) error {
	result := s.db.WithContext(ctx).Model(&recordingRow{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":        title,
			"updated_date": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to rename recording %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("recording not found: %s", id)
	}

	s.logger.Debugf("renamed recording: id=%s, title=%q", id, title)
	return nil
}

func (s *gormStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&recordingRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete recording %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("recording not found: %s", id)
	}

	s.logger.Debugf("deleted recording: id=%s", id)
	return nil
}

func toRow(recording *internal_type.Recording) (*recordingRow, error) {
	words, err := json.Marshal(recording.Words)
	if err != nil {
		return nil, fmt.Errorf("encoding words for recording %s: %w", recording.ID, err)
	}
	segments, err := json.Marshal(recording.Segments)
	if err != nil {
		return nil, fmt.Errorf("encoding segments for recording %s: %w", recording.ID, err)
	}
	media, err := json.Marshal(recording.Media)
	if err != nil {
		return nil, fmt.Errorf("encoding media for recording %s: %w", recording.ID, err)
	}
	return &recordingRow{
		ID:            recording.ID,
		Title:         recording.Title,
		Date:          recording.Date,
		Duration:      recording.Duration,
		AudioLocation: recording.AudioLocation,
		Words:         words,
		Segments:      segments,
		Media:         media,
	}, nil
}

func fromRow(row *recordingRow) (*internal_type.Recording, error) {
	recording := internal_type.Recording{
		ID:            row.ID,
		Title:         row.Title,
		Date:          row.Date,
		Duration:      row.Duration,
		AudioLocation: row.AudioLocation,
	}
	if len(row.Words) > 0 {
		if err := json.Unmarshal(row.Words, &recording.Words); err != nil {
			return nil, fmt.Errorf("decoding words for recording %s: %w", row.ID, err)
		}
	}
	if len(row.Segments) > 0 {
		if err := json.Unmarshal(row.Segments, &recording.Segments); err != nil {
			return nil, fmt.Errorf("decoding segments for recording %s: %w", row.ID, err)
		}
	}
	if len(row.Media) > 0 {
		if err := json.Unmarshal(row.Media, &recording.Media); err != nil {
			return nil, fmt.Errorf("decoding media for recording %s: %w", row.ID, err)
		}
	}
	return &recording, nil
}
