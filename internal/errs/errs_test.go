package errs_test

import (
	"strings"
	"testing"

	"github.com/WebWorksCollection/csspp/internal/errs"
	"github.com/WebWorksCollection/csspp/internal/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter(t *testing.T) {
	pos := position.New("test.scss")

	t.Run("collects messages with counters", func(t *testing.T) {
		r := errs.NewReporter()
		r.Error(pos, "variable %q is not set", "$width")
		r.Warning(pos, "deprecated value")
		r.Info(pos, "just saying")

		require.Len(t, r.Messages(), 3)
		assert.Equal(t, 1, r.ErrorCount())
		assert.Equal(t, 1, r.WarningCount())
		assert.True(t, r.HasErrors())
		assert.Equal(t, `variable "$width" is not set`, r.Messages()[0].Text)
	})

	t.Run("streams formatted messages to the output", func(t *testing.T) {
		var buf strings.Builder
		r := errs.NewReporter()
		r.SetOutput(&buf)
		r.Error(pos, "something broke")

		assert.Equal(t, "test.scss(1): error: something broke\n", buf.String())
	})

	t.Run("colors the severity when enabled", func(t *testing.T) {
		var buf strings.Builder
		r := errs.NewReporter()
		r.SetOutput(&buf)
		r.SetColor(true)
		r.Warning(pos, "look out")

		assert.Contains(t, buf.String(), "\033[33m")
		assert.Contains(t, buf.String(), "\033[0m")
	})

	t.Run("limit suppresses further errors after one notice", func(t *testing.T) {
		r := errs.NewReporter()
		r.SetLimit(2)
		for i := 0; i < 5; i++ {
			r.Error(pos, "error %d", i)
		}

		// two real errors, one suppression notice
		require.Len(t, r.Messages(), 3)
		assert.Equal(t, "too many errors, further messages suppressed", r.Messages()[2].Text)
		assert.Equal(t, 5, r.ErrorCount())
		assert.ErrorIs(t, r.Err(), errs.ErrTooManyErrors)
	})

	t.Run("err returns nil without errors", func(t *testing.T) {
		r := errs.NewReporter()
		r.Warning(pos, "only a warning")
		assert.NoError(t, r.Err())
	})

	t.Run("err wraps the compile failed sentinel", func(t *testing.T) {
		r := errs.NewReporter()
		r.Error(pos, "boom")
		assert.ErrorIs(t, r.Err(), errs.ErrCompileFailed)
	})

	t.Run("reset clears state", func(t *testing.T) {
		r := errs.NewReporter()
		r.Error(pos, "boom")
		r.Reset()
		assert.Empty(t, r.Messages())
		assert.False(t, r.HasErrors())
		assert.NoError(t, r.Err())
	})
}

func TestMessageFormat(t *testing.T) {
	pos := position.New("a.scss")
	m := errs.Message{Pos: pos, Severity: errs.SeverityError, Text: "bad selector"}

	assert.Equal(t, "a.scss(1): error: bad selector", m.Format(false))
	assert.Equal(t, "a.scss(1): \033[31merror\033[0m: bad selector", m.Format(true))
}
