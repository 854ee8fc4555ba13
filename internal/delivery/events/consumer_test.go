package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/coffee_catalog/internal/pkg/logger"
)

func TestLoggingHandler_ValidEvent(t *testing.T) {
	handler := LoggingHandler(logger.New("test"))

	data, err := json.Marshal(ProductEvent{
		EventType: ProductCreated,
		Timestamp: time.Now(),
		ProductID: uuid.New(),
		Article:   12345,
		Title:     "Espresso",
		Price:     45,
	})
	require.NoError(t, err)

	assert.NoError(t, handler(data))
}

func TestLoggingHandler_InvalidJSON(t *testing.T) {
	handler := LoggingHandler(logger.New("test"))

	err := handler([]byte(`{invalid json}`))

	assert.ErrorContains(t, err, "unmarshal")
}
