package wasm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorsReportAccumulates(t *testing.T) {
	var errs Errors
	require.Nil(t, errs.Err())

	errs.Push("section function")
	errs.Report(Location{Line: 3, Col: 4}, errors.New("boom"))
	errs.Pop()

	require.Equal(t, 1, errs.Len())
	err := errs.Err()
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
	require.Contains(t, err.Error(), "section function")
}

func TestErrorsErrCombinesMultiple(t *testing.T) {
	var errs Errors
	errs.Report(Location{}, errors.New("first"))
	errs.Report(Location{}, errors.New("second"))

	err := errs.Err()
	require.Contains(t, err.Error(), "2 errors")
	require.Contains(t, err.Error(), "first")
	require.Contains(t, err.Error(), "second")
}

func TestCodecErrorUnwrap(t *testing.T) {
	var errs Errors
	cause := errors.New("underlying")
	ce := errs.Report(Location{}, cause)
	require.Same(t, cause, errors.Unwrap(ce))
	require.True(t, errors.Is(ce, cause))
}

func TestErrorsReportfFormats(t *testing.T) {
	var errs Errors
	ce := errs.Reportf(Location{Line: 1, Col: 1}, "bad %s at %d", "thing", 7)
	require.Equal(t, "bad thing at 7", ce.cause.Error())
}
