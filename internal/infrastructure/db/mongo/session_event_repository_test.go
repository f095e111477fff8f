package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marketplace/admin-console/internal/core/domain"
)

func TestEventDocument(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	recorded := ts.Add(time.Second)

	doc := eventDocument(&domain.SessionEvent{
		SessionID: "sess-1",
		Type:      domain.EventLogin,
		UserID:    "u-1",
		Role:      domain.RoleMerchant,
		Timestamp: ts,
	}, recorded)

	assert.Equal(t, "login", doc["type"])
	assert.Equal(t, "sess-1", doc["session_id"])
	assert.Equal(t, "u-1", doc["user_id"])
	assert.Equal(t, "merchant", doc["role"])
	assert.Equal(t, time.UTC, doc["timestamp"].(time.Time).Location())
	assert.NotContains(t, doc, "reason")
}

func TestEventDocument_FailedLoginHasNoIdentity(t *testing.T) {
	doc := eventDocument(&domain.SessionEvent{
		Type:   domain.EventLoginFailed,
		Reason: "invalid credentials",
	}, time.Now())

	assert.NotContains(t, doc, "session_id")
	assert.NotContains(t, doc, "user_id")
	assert.NotContains(t, doc, "role")
	assert.Equal(t, "invalid credentials", doc["reason"])
}
