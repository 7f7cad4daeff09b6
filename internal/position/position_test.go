package position_test

import (
	"testing"

	"github.com/WebWorksCollection/csspp/internal/position"
	"github.com/stretchr/testify/assert"
)

func TestPosition(t *testing.T) {
	t.Run("new position starts at page 1 line 1", func(t *testing.T) {
		p := position.New("styles.scss")
		assert.Equal(t, "styles.scss", p.Filename)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 1, p.Line)
		assert.Equal(t, 1, p.Total)
	})

	t.Run("next line advances line and total", func(t *testing.T) {
		p := position.New("styles.scss")
		p.NextLine()
		p.NextLine()
		assert.Equal(t, 3, p.Line)
		assert.Equal(t, 3, p.Total)
		assert.Equal(t, 1, p.Page)
	})

	t.Run("next page restarts line but not total", func(t *testing.T) {
		p := position.New("styles.scss")
		p.NextLine()
		p.NextPage()
		assert.Equal(t, 2, p.Page)
		assert.Equal(t, 1, p.Line)
		assert.Equal(t, 3, p.Total)
	})

	t.Run("string renders file and line", func(t *testing.T) {
		p := position.New("styles.scss")
		p.NextLine()
		assert.Equal(t, "styles.scss(2)", p.String())
	})

	t.Run("string without filename falls back to line only", func(t *testing.T) {
		p := position.New("")
		assert.Equal(t, "line 1", p.String())
	})

	t.Run("is zero", func(t *testing.T) {
		var p position.Position
		assert.True(t, p.IsZero())
		assert.False(t, position.New("").IsZero())
	})
}
