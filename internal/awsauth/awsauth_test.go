package awsauth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionName(t *testing.T) {
	name := SessionName("PDFContentScan")
	require.True(t, strings.HasPrefix(name, "PDFContentScan-"))
	_, err := uuid.Parse(strings.TrimPrefix(name, "PDFContentScan-"))
	assert.NoError(t, err)

	assert.NotEqual(t, SessionName("x"), SessionName("x"))
}

func TestSessionName_NoPrefix(t *testing.T) {
	_, err := uuid.Parse(SessionName(""))
	assert.NoError(t, err)
}

func TestAssumeRole_RequiresARN(t *testing.T) {
	_, err := AssumeRole(context.Background(), "", "", "")
	assert.Error(t, err)
}

func TestAssumeRole_DefaultsRegion(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cfg, err := AssumeRole(context.Background(), "arn:aws:iam::123456789012:role/test", "", "test")
	require.NoError(t, err)
	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.NotNil(t, cfg.Credentials)
}
