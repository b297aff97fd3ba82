package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canal(value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "canal", Value: []byte(value)}
}

func TestUserDetailHandler_InvalidatesChangedRows(t *testing.T) {
	var got []uint64
	h := NewUserDetailHandler(func(_ context.Context, ids ...uint64) error {
		got = append(got, ids...)
		return nil
	})

	err := h.logic(context.Background(), canal(`{"table":"user_detail","type":"UPDATE","data":[{"user_id":"7","nickname":"a"},{"user_id":"9"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []uint64{7, 9}, got)
}

func TestUserBlockHandler_UsesBlockerColumn(t *testing.T) {
	var got []uint64
	h := NewUserBlockHandler(func(_ context.Context, ids ...uint64) error {
		got = append(got, ids...)
		return nil
	})

	err := h.logic(context.Background(), canal(`{"table":"user_blocks","type":"DELETE","data":[{"blocker_id":"3","blocked_id":"4"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, got)
}

func TestInvalidationHandler_SkipsForeignMessages(t *testing.T) {
	called := false
	h := NewUserDetailHandler(func(context.Context, ...uint64) error {
		called = true
		return nil
	})

	cases := []string{
		`not json`,
		`{"table":"user_blocks","type":"UPDATE","data":[{"user_id":"1"}]}`,
		`{"table":"user_detail","type":"UPDATE","data":[]}`,
		`{"table":"user_detail","isDdl":true,"type":"ALTER","data":[{"user_id":"1"}]}`,
		`{"table":"user_detail","type":"UPDATE","data":[{"user_id":"abc"}]}`,
	}
	for _, value := range cases {
		err := h.logic(context.Background(), canal(value))
		assert.ErrorIs(t, err, errSkipMessage, value)
	}
	assert.False(t, called)
}

func TestProcessBatch_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	logic := func(context.Context, *sarama.ConsumerMessage) error {
		attempts++
		if attempts < 3 {
			return errors.New("redis down")
		}
		return nil
	}

	processBatch(context.Background(), []*sarama.ConsumerMessage{canal("{}")}, logic)
	assert.Equal(t, 3, attempts)
}

func TestProcessBatch_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0
	processBatch(ctx, []*sarama.ConsumerMessage{canal("{}")}, func(context.Context, *sarama.ConsumerMessage) error {
		attempts++
		return errors.New("fail")
	})
	assert.Equal(t, 1, attempts)
}

func TestStrToUint64(t *testing.T) {
	assert.Equal(t, uint64(12), StrToUint64("12"))
	assert.Equal(t, uint64(12), StrToUint64(float64(12)))
	assert.Equal(t, uint64(0), StrToUint64(nil))
	assert.Equal(t, uint64(0), StrToUint64("x"))
}
