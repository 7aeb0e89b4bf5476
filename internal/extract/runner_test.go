package extract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_CapturesStdoutAndStderr(t *testing.T) {
	r := newExecRunner(discardLogger())

	out, errb, err := r.Run(context.Background(), "sh", "-c", "printf hello; printf oops >&2")

	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
	assert.Equal(t, "oops", string(errb))
}

func TestExecRunner_ReportsExitFailure(t *testing.T) {
	r := newExecRunner(discardLogger())

	_, errb, err := r.Run(context.Background(), "sh", "-c", "printf broken >&2; exit 3")

	require.Error(t, err)
	assert.Equal(t, "broken", string(errb))
}

func TestExecRunner_ContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	r := newExecRunner(discardLogger())

	_, _, err := r.Run(ctx, "sh", "-c", "sleep 5")
	assert.Error(t, err)
}

func TestExecRunner_NilLoggerDefaults(t *testing.T) {
	r := newExecRunner(nil)
	require.NotNil(t, r.logger)

	_, _, err := r.Run(context.Background(), "sh", "-c", "true")
	assert.NoError(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab...(truncated)", truncate("abcdef", 2))
}
