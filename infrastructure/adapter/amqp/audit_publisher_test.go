package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/complaintdesk/domain/entity"
)

type recordingChannel struct {
	keys     []string
	messages []amqp.Publishing
	err      error
	closed   bool
}

func (c *recordingChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.keys = append(c.keys, key)
	c.messages = append(c.messages, msg)
	return nil
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return nil
}

func TestAuditPublisher_Append(t *testing.T) {
	ch := &recordingChannel{}
	p := newAuditPublisherWithChannel(ch, "complaintdesk.audit")

	entry := entity.NewAuditEntry("admin-1", entity.AuditActionAdminRoleGranted, entity.AuditResourceUserRoles, "user-2",
		map[string]interface{}{"email": "user-2@institute.edu", "request_id": "req-1"})
	require.NoError(t, p.Append(context.Background(), entry))

	require.Len(t, ch.messages, 1)
	assert.Equal(t, "complaintdesk.audit", ch.keys[0])
	msg := ch.messages[0]
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, entry.ID, msg.MessageId)
	assert.Equal(t, entity.AuditActionAdminRoleGranted, msg.Type)

	var body auditMessage
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "admin-1", body.ActorID)
	assert.Equal(t, "user-2", body.ResourceID)
	assert.Equal(t, "req-1", body.Details["request_id"])
	assert.WithinDuration(t, entry.CreatedAt, body.OccurredAt, time.Millisecond)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAuditPublisher_PublishError(t *testing.T) {
	ch := &recordingChannel{err: amqp.ErrClosed}
	p := newAuditPublisherWithChannel(ch, "q")

	err := p.Append(context.Background(), entity.NewAuditEntry("", entity.AuditActionOrphanedRolesCleaned, entity.AuditResourceUserRoles, "", nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, amqp.ErrClosed))
}
