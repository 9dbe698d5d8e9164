package outcome_test

import (
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/outcome"
	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	p := outcome.Pending[int]()
	require.True(t, p.IsPending())
	require.Equal(t, "pending", p.Kind().String())
	_, ok := p.Value()
	require.False(t, ok)

	s := outcome.Success(42)
	v, ok := s.Value()
	require.True(t, ok)
	require.Equal(t, 42, v)
	require.NoError(t, s.Err())

	f := outcome.Failure[int]("boom", 503)
	require.True(t, f.IsFailure())
	require.Equal(t, "boom", f.Message())
	require.Equal(t, 503, f.Code())
	require.EqualError(t, f.Err(), "boom")
}

func TestFromError(t *testing.T) {
	t.Run("status error", func(t *testing.T) {
		err := fmt.Errorf("auth/login: %w", &apperrors.StatusError{Code: 401, Message: "bad credentials"})
		r := outcome.FromError[string](err)

		require.Equal(t, 401, r.Code())
		require.Equal(t, "bad credentials", r.Message())
		require.True(t, errors.Is(r.Err(), apperrors.ErrUnauthorized))
	})

	t.Run("security violation", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", &apperrors.SecurityViolationError{Reasons: []string{"device is rooted"}})
		r := outcome.FromError[string](err)

		require.Equal(t, 0, r.Code())
		require.Equal(t, "security violation: device is rooted", r.Message())
		require.True(t, errors.Is(r.Err(), apperrors.ErrSecurityViolation))
	})

	t.Run("network", func(t *testing.T) {
		err := apperrors.Join(apperrors.ErrNetwork, errors.New("dial tcp: connection refused"))
		r := outcome.FromError[string](err)

		require.Equal(t, 0, r.Code())
		require.Contains(t, r.Message(), "connection refused")
		require.ErrorIs(t, r.Err(), apperrors.ErrNetwork)
	})
}

func TestMatch(t *testing.T) {
	var calls []string
	record := func(r outcome.Result[int]) {
		r.Match(
			func() { calls = append(calls, "pending") },
			func(v int) { calls = append(calls, fmt.Sprintf("success %d", v)) },
			func(msg string, code int) { calls = append(calls, fmt.Sprintf("failure %s %d", msg, code)) },
		)
	}

	record(outcome.Pending[int]())
	record(outcome.Success(7))
	record(outcome.Failure[int]("nope", 400))

	require.Equal(t, []string{"pending", "success 7", "failure nope 400"}, calls)

	require.NotPanics(t, func() { outcome.Success(1).Match(nil, nil, nil) })
}

func TestMap(t *testing.T) {
	double := func(v int) string { return fmt.Sprint(v * 2) }

	v, ok := outcome.Map(outcome.Success(21), double).Value()
	require.True(t, ok)
	require.Equal(t, "42", v)

	f := outcome.Map(outcome.Failure[int]("nope", 400), double)
	require.True(t, f.IsFailure())
	require.Equal(t, 400, f.Code())

	require.True(t, outcome.Map(outcome.Pending[int](), double).IsPending())
}
