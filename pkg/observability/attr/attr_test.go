package attr

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", CorrelationIDFrom(ctx))
	assert.Equal(t, "abc-123", ExtractCorrelationID(ctx).Value.String())

	assert.Equal(t, "", CorrelationIDFrom(context.Background()))
	assert.Equal(t, context.Background(), WithCorrelationID(context.Background(), ""))
}

func TestHelpers(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id.String(), UUID("id", id).Value.String())
	assert.Equal(t, "", UUID("id", uuid.Nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "season_id", SeasonID(id).Key)
}
