package amqp

import (
	"testing"
	"time"

	"dompet/internal/core"
)

func TestNewRecordChangedMessage(t *testing.T) {
	msg := NewRecordChangedMessage("owner-1", KindDebtCredit, "d-1", OpPay)

	if msg.Owner != "owner-1" || msg.Kind != KindDebtCredit || msg.ID != "d-1" || msg.Op != OpPay {
		t.Errorf("unexpected message: %+v", msg)
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestRecordChangedMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &RecordChangedMessage{Owner: "o", Kind: KindTransaction, ID: "t", Op: OpDelete, Timestamp: timestamp}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	parsed, err := RecordChangedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("RecordChangedMessageFromJSON() error = %v", err)
	}
	if parsed.Op != OpDelete || !parsed.Timestamp.Equal(timestamp) {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestRecordChangedMessage_Invalid(t *testing.T) {
	tests := map[string]string{
		"not json":      `{"owner":`,
		"missing owner": `{"kind":"transaction","id":"x"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := RecordChangedMessageFromJSON([]byte(body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewDebtOverdueMessage(t *testing.T) {
	d := core.NewDebtCredit(core.Credit, "owner-1", core.Rupiah(75000), "Sari", "titip", core.NewDate(2024, 1, 1), core.NewDate(2024, 2, 1))
	d.ID = "d-9"

	msg := NewDebtOverdueMessage(d)
	if msg.DueDate != "2024-02-01" || msg.AmountSen != 7500000 || msg.Kind != core.Credit {
		t.Errorf("unexpected message: %+v", msg)
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	parsed, err := DebtOverdueMessageFromJSON(data)
	if err != nil {
		t.Fatalf("DebtOverdueMessageFromJSON() error = %v", err)
	}
	if parsed.Counterparty != "Sari" || parsed.ID != "d-9" {
		t.Errorf("parsed = %+v", parsed)
	}

	if _, err := DebtOverdueMessageFromJSON([]byte(`{"owner":"o"}`)); err == nil {
		t.Error("expected error for message without id")
	}
}
