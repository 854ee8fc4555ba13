package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		env, level string
		want       zerolog.Level
	}{
		{env: "development", want: zerolog.DebugLevel},
		{env: "production", want: zerolog.InfoLevel},
		{env: "test", want: zerolog.WarnLevel},
		{env: "production", level: "error", want: zerolog.ErrorLevel},
		{env: "development", level: "bogus", want: zerolog.DebugLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, levelFor(tt.env, tt.level), "env=%s level=%s", tt.env, tt.level)
	}
}
