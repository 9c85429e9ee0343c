package service_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/service"
)

func TestParseDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png bytes"))

	data, contentType, ok := service.ParseDataURI("data:image/png;base64," + payload)
	require.True(t, ok)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, []byte("png bytes"), data)

	_, _, ok = service.ParseDataURI("https://example.com/image.png")
	assert.False(t, ok)

	_, _, ok = service.ParseDataURI("data:image/png," + payload)
	assert.False(t, ok)

	_, _, ok = service.ParseDataURI("data:image/png;base64,%%%")
	assert.False(t, ok)
}
