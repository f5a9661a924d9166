package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelWrapping(t *testing.T) {
	ioErr := fmt.Errorf("permission denied")

	err := Unreadable("/data/before.csv", ioErr)
	assert.ErrorIs(t, err, ErrUnreadableFile)
	assert.Contains(t, err.Error(), "/data/before.csv")
	assert.Contains(t, err.Error(), "permission denied")

	err = Empty("/data/after.csv")
	assert.ErrorIs(t, err, ErrEmptyFile)
	assert.Contains(t, err.Error(), "/data/after.csv")

	err = ParseFailure("classifier", stderrors.New("boom"))
	assert.ErrorIs(t, err, ErrParseFailure)
	assert.Contains(t, err.Error(), "classifier")
}

func TestIsFileError(t *testing.T) {
	assert.True(t, IsFileError(Unreadable("x", stderrors.New("io"))))
	assert.True(t, IsFileError(Empty("x")))
	assert.False(t, IsFileError(ParseFailure("diff", stderrors.New("x"))))
	assert.False(t, IsFileError(nil))
}

func TestAPIError(t *testing.T) {
	err := New(400, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, 400, err.StatusCode)

	detailed := InvalidRequestWithError(stderrors.New("missing field"))
	assert.Equal(t, "missing field", detailed.Details)
}
