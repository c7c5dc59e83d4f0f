package services

import (
	"testing"

	"pennywise/internal/events"
	"pennywise/internal/models"
	"pennywise/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	t.Run("records_and_publishes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		recorder := &events.Recorder{}
		svc := NewAuditService(db, recorder)
		user := testutil.CreateTestUser(t, db)

		svc.Log(user.ID, "CREATE_TRANSACTION", "transaction", "tx-1", "127.0.0.1", map[string]interface{}{"amount": "10.00"})

		var entry models.AuditLog
		testutil.AssertNoError(t, db.Where("user_id = ?", user.ID).First(&entry).Error)
		if entry.Action != "CREATE_TRANSACTION" || entry.ResourceID != "tx-1" || entry.Changes != `{"amount":"10.00"}` {
			t.Errorf("unexpected audit entry %+v", entry)
		}

		published := recorder.Events()
		if len(published) != 1 {
			t.Fatalf("expected 1 event, got %d", len(published))
		}
		if published[0].Type != "transaction.created" || published[0].UserID != user.ID {
			t.Errorf("unexpected event %+v", published[0])
		}
	})

	t.Run("nil_publisher", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db, nil)
		user := testutil.CreateTestUser(t, db)

		svc.Log(user.ID, "DELETE_CATEGORY", "category", "cat-1", "", nil)

		var count int64
		db.Model(&models.AuditLog{}).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 audit entry, got %d", count)
		}
	})
}
