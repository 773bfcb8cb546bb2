package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusWaitingForCapture.Valid())
	assert.True(t, StatusSucceeded.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, Status("refunded").Valid())
	assert.False(t, Status("").Valid())
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusWaitingForCapture, true},
		{StatusPending, StatusSucceeded, true},
		{StatusPending, StatusCancelled, true},
		{StatusWaitingForCapture, StatusSucceeded, true},
		{StatusWaitingForCapture, StatusCancelled, true},
		{StatusWaitingForCapture, StatusPending, false},
		{StatusSucceeded, StatusCancelled, false},
		{StatusSucceeded, StatusPending, false},
		{StatusCancelled, StatusSucceeded, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
