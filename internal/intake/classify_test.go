package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("returns catalog member or sentinel, never anything else", func(t *testing.T) {
		catalog := []string{"plumber", "electrician", "cleaning"}

		assert.Equal(t, "plumber", Classify("Need a plumber ASAP", catalog))
		assert.Equal(t, SentinelCategory, Classify("looking for a good tutor", catalog))
		assert.Equal(t, SentinelCategory, Classify("", catalog))
		assert.Equal(t, SentinelCategory, Classify("anything at all", nil))
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		catalog := []string{"plumber"}

		assert.Equal(t, "plumber", Classify("NEED A PLUMBER", catalog))
		assert.Equal(t, "Plumber", Classify("need a plumber", []string{"Plumber"}))
	})

	t.Run("first match wins in catalog order", func(t *testing.T) {
		// 目录顺序即优先级
		catalog := []string{"clean", "cleaning"}
		assert.Equal(t, "clean", Classify("need cleaning help", catalog))

		catalog = []string{"cleaning", "clean"}
		assert.Equal(t, "cleaning", Classify("need cleaning help", catalog))
	})

	t.Run("empty labels are skipped", func(t *testing.T) {
		catalog := []string{"", "plumber"}
		assert.Equal(t, "plumber", Classify("plumber please", catalog))
		assert.Equal(t, SentinelCategory, Classify("no match here", []string{""}))
	})
}
