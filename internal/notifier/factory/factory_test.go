package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kebairia/backupwatch/internal/config"
	"github.com/kebairia/backupwatch/internal/logger"
	"github.com/kebairia/backupwatch/internal/report"
)

func TestNew_SelectsDriver(t *testing.T) {
	tests := []struct {
		driver     string
		wantName   string
		wantFormat report.Format
	}{
		{"", config.DriverPushPlus, report.FormatHTML},
		{"pushplus", config.DriverPushPlus, report.FormatHTML},
		{"PushPlus", config.DriverPushPlus, report.FormatHTML},
		{"slack", config.DriverSlack, report.FormatMarkdown},
	}
	for _, tt := range tests {
		n, err := New(config.NotifyConfig{Driver: tt.driver}, logger.Nop())
		require.NoError(t, err, tt.driver)
		assert.Equal(t, tt.wantName, n.Name())
		assert.Equal(t, tt.wantFormat, n.Format())
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(config.NotifyConfig{Driver: "carrier-pigeon"}, logger.Nop())
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
