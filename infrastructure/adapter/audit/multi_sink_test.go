package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/complaintdesk/domain/entity"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

type sliceSink struct {
	entries []*entity.AuditEntry
	err     error
}

func (s *sliceSink) Append(ctx context.Context, entry *entity.AuditEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func TestMultiSink(t *testing.T) {
	entry := entity.NewAuditEntry("", entity.AuditActionFirstAdminBootstrapped, entity.AuditResourceUserRoles, "u1", nil)

	t.Run("mirrors to every sink", func(t *testing.T) {
		primary, mirror := &sliceSink{}, &sliceSink{}
		sink := NewMultiSink(logger.NewNopLogger(), primary, mirror)

		require.NoError(t, sink.Append(context.Background(), entry))
		assert.Len(t, primary.entries, 1)
		assert.Len(t, mirror.entries, 1)
	})

	t.Run("secondary failure is swallowed", func(t *testing.T) {
		primary := &sliceSink{}
		sink := NewMultiSink(logger.NewNopLogger(), primary, &sliceSink{err: errors.New("broker down")})

		require.NoError(t, sink.Append(context.Background(), entry))
		assert.Len(t, primary.entries, 1)
	})

	t.Run("primary failure is returned and mirror still runs", func(t *testing.T) {
		mirror := &sliceSink{}
		sink := NewMultiSink(logger.NewNopLogger(), &sliceSink{err: errors.New("db down")}, mirror)

		assert.EqualError(t, sink.Append(context.Background(), entry), "db down")
		assert.Len(t, mirror.entries, 1)
	})
}
