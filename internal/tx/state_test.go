package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from State
		on   Event
		want State
	}{
		{NoAction, ApproveStart, ApproveExecuting},
		{ApproveExecuting, ApproveSubmitted, ApproveInProgress},
		{ApproveInProgress, Submit, WaitingForTransactions},
		{NoAction, Submit, WaitingForTransactions},
		{WaitingForTransactions, Complete, NoAction},
		{NoAction, Fail, Error},
		{ApproveExecuting, Fail, Error},
		{ApproveInProgress, Fail, Error},
		{WaitingForTransactions, Fail, Error},
		{Error, Edit, NoAction},
		{ApproveExecuting, Edit, NoAction},
		{NoAction, Edit, NoAction},
	}

	for _, tc := range tests {
		t.Run(tc.from.String()+"/"+tc.on.String(), func(t *testing.T) {
			got, err := Transition(tc.from, tc.on)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTransitionRejectsIllegalPairs(t *testing.T) {
	illegal := []struct {
		from State
		on   Event
	}{
		{Error, ApproveStart},
		{Error, Submit},
		{Error, Fail},
		{NoAction, ApproveSubmitted},
		{NoAction, Complete},
		{ApproveExecuting, Submit},
		{ApproveInProgress, ApproveStart},
		{WaitingForTransactions, Edit},
		{WaitingForTransactions, ApproveStart},
	}

	for _, tc := range illegal {
		t.Run(tc.from.String()+"/"+tc.on.String(), func(t *testing.T) {
			got, err := Transition(tc.from, tc.on)
			assert.ErrorIs(t, err, ErrIllegalTransition)
			assert.Equal(t, tc.from, got)
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ApproveInProgress", ApproveInProgress.String())
	assert.Equal(t, "State(42)", State(42).String())
	assert.Equal(t, "Event(42)", Event(42).String())
}
