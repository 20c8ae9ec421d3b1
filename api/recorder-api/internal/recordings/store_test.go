// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_recordings

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	internal_type "github.com/rapidaai/voicenote/api/recorder-api/internal/type"
	"github.com/rapidaai/voicenote/pkg/commons"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-recordings"),
		commons.Level("debug"),
	)
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return logger
}

func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewStore(db, newTestLogger(t)), mock
}

func sampleRecording() *internal_type.Recording {
	confidence := 0.9
	return &internal_type.Recording{
		ID:            "rec-1",
		Title:         "Standup notes",
		Date:          time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Duration:      42.5,
		AudioLocation: "/data/rec-1.wav",
		Words: []internal_type.TimestampedWord{
			{Text: "hello", StartTime: 0, EndTime: 0.5, Confidence: &confidence},
		},
		Segments: []internal_type.TranscriptionSegment{
			{Text: "hello"},
		},
		Media: []internal_type.TimestampedMedia{
			{ID: "m-1", Timestamp: 5, AssetIdentifier: "asset-1", MediaType: internal_type.MediaTypePhoto},
		},
	}
}

func TestStore_Save(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "recordings"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), sampleRecording()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetDecodesJSONColumns(t *testing.T) {
	store, mock := newMockStore(t)
	want := sampleRecording()

	words, err := json.Marshal(want.Words)
	require.NoError(t, err)
	segments, err := json.Marshal(want.Segments)
	require.NoError(t, err)
	media, err := json.Marshal(want.Media)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{
		"id", "title", "date", "duration", "audio_location", "words", "segments", "media",
	}).AddRow(want.ID, want.Title, want.Date, want.Duration, want.AudioLocation, words, segments, media)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "recordings" WHERE id = $1`)).
		WithArgs(want.ID, 1).
		WillReturnRows(rows)

	got, err := store.Get(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Duration, got.Duration)
	require.Len(t, got.Words, 1)
	assert.Equal(t, "hello", got.Words[0].Text)
	require.Len(t, got.Media, 1)
	assert.Equal(t, "asset-1", got.Media[0].AssetIdentifier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "recordings" WHERE id = $1`)).
		WithArgs("missing", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStore_Rename(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "recordings" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Rename(context.Background(), "rec-1", "Renamed"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RenameMissingRowFails(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "recordings" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Rename(context.Background(), "missing", "Renamed")
	assert.ErrorContains(t, err, "not found")
}

func TestStore_Delete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "recordings"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), "rec-1"))

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "recordings"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorContains(t, store.Delete(context.Background(), "missing"), "not found")
}
