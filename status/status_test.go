package status

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeError struct{ category Category }

func (e fakeError) Error() string      { return fmt.Sprintf("fake error of category %s", e.category) }
func (e fakeError) Category() Category { return e.category }

func TestCategoryOf(t *testing.T) {
	require.Equal(t, CategoryNone, CategoryOf(nil))
	require.Equal(t, CategoryUnsupported, CategoryOf(errors.New("no category")))

	err := errors.WithMessage(fakeError{CategoryResourceExhaustion}, "while allocating")
	require.Equal(t, CategoryResourceExhaustion, CategoryOf(err))
	require.True(t, IsRetryable(err))
	require.False(t, IsNotReady(err))

	err = errors.Wrap(fakeError{CategoryNotReady}, "polling")
	require.True(t, IsNotReady(err))
	require.True(t, IsRetryable(err))

	require.False(t, IsRetryable(fakeError{CategoryInvalidUsage}))
	require.False(t, IsRetryable(nil))
}

func TestCategoryString(t *testing.T) {
	require.Equal(t, "InvalidUsage", CategoryInvalidUsage.String())
	require.Equal(t, "Category(100)", Category(100).String())
	for _, c := range CategoryValues() {
		parsed, err := CategoryString(c.String())
		require.NoError(t, err)
		require.Equal(t, c, parsed)
	}
	parsed, err := CategoryString("launchfailure")
	require.NoError(t, err)
	require.Equal(t, CategoryLaunchFailure, parsed)
	_, err = CategoryString("Milliways")
	require.Error(t, err)
	require.False(t, Category(-1).IsACategory())
}
