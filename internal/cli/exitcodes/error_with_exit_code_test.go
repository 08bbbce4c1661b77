package exitcodes

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestGetInnerErrorAndExitCode(t *testing.T) {
	err, code := GetInnerErrorAndExitCode(nil)
	assert.NoError(t, err)
	assert.Equal(t, ExitCodeSuccess, code)

	plain := errors.New("boom")
	err, code = GetInnerErrorAndExitCode(plain)
	assert.Equal(t, plain, err)
	assert.Equal(t, ExitCodeGeneralError, code)

	err, code = GetInnerErrorAndExitCode(NewErrorWithExitCode(plain, ExitCodeInterrupted))
	assert.Equal(t, plain, err)
	assert.Equal(t, ExitCodeInterrupted, code)
	assert.ErrorIs(t, NewErrorWithExitCode(plain, ExitCodeHandledError), plain)

	wrapped := pkgerrors.Wrap(NewErrorWithExitCode(plain, ExitCodeHandledError), "run failed")
	err, code = GetInnerErrorAndExitCode(wrapped)
	assert.Equal(t, plain, err)
	assert.Equal(t, ExitCodeHandledError, code)
}
