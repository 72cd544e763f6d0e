package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlert_MarkRead(t *testing.T) {
	alert := &Alert{Sent: true}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	changed := alert.MarkRead(now)

	assert.True(t, changed)
	assert.True(t, alert.Read)
	require.NotNil(t, alert.ReadAt)
	assert.Equal(t, now, *alert.ReadAt)
}

func TestAlert_MarkRead_AlreadyRead(t *testing.T) {
	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	alert := &Alert{Sent: true, Read: true, ReadAt: &first}

	changed := alert.MarkRead(first.Add(time.Hour))

	assert.False(t, changed)
	assert.Equal(t, first, *alert.ReadAt)
}

func TestAlert_MarkClicked_ImpliesRead(t *testing.T) {
	alert := &Alert{Sent: true}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	changed := alert.MarkClicked(now)

	assert.True(t, changed)
	assert.True(t, alert.Clicked)
	assert.True(t, alert.Read)
	require.NotNil(t, alert.ReadAt)
	assert.Equal(t, now, *alert.ReadAt)
}

func TestAlert_MarkClicked_KeepsOriginalReadAt(t *testing.T) {
	readAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	alert := &Alert{Sent: true, Read: true, ReadAt: &readAt}

	changed := alert.MarkClicked(readAt.Add(time.Hour))

	assert.True(t, changed)
	assert.True(t, alert.Clicked)
	assert.Equal(t, readAt, *alert.ReadAt)
}

func TestAlert_MarkClicked_AlreadyClicked(t *testing.T) {
	readAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	alert := &Alert{Sent: true, Read: true, Clicked: true, ReadAt: &readAt}

	changed := alert.MarkClicked(readAt.Add(time.Hour))

	assert.False(t, changed)
	assert.True(t, alert.Read)
	assert.True(t, alert.Clicked)
}

// MarkRead after MarkClicked must not regress the clicked state.
func TestAlert_MarkRead_AfterClicked(t *testing.T) {
	alert := &Alert{Sent: true}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.True(t, alert.MarkClicked(now))
	changed := alert.MarkRead(now.Add(time.Minute))

	assert.False(t, changed)
	assert.True(t, alert.Clicked)
	assert.True(t, alert.Read)
	assert.Equal(t, now, *alert.ReadAt)
}
