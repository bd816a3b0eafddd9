package amqp

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"dompet/internal/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Routing keys. Each one is bound to its own durable queue.
const (
	RoutingRecordChanged = "record.changed"
	RoutingDebtOverdue   = "debt.overdue"
)

// RecordKind names the record family a change applies to.
type RecordKind string

const (
	KindTransaction RecordKind = "transaction"
	KindDebtCredit  RecordKind = "debt_credit"
)

// Op is the mutation that produced a RecordChangedMessage.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpPay    Op = "pay"
)

// RecordChangedMessage announces that an owner's ledger changed. It
// carries ids only; consumers re-read the snapshot they need.
type RecordChangedMessage struct {
	Owner     string     `json:"owner"`
	Kind      RecordKind `json:"kind"`
	ID        string     `json:"id"`
	Op        Op         `json:"op"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewRecordChangedMessage(owner string, kind RecordKind, id string, op Op) *RecordChangedMessage {
	return &RecordChangedMessage{
		Owner:     owner,
		Kind:      kind,
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes and checks the required fields.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Owner == "" {
		return nil, fmt.Errorf("record changed message without owner")
	}
	return &msg, nil
}

// DebtOverdueMessage is a reminder for one pending record whose due date
// has passed.
type DebtOverdueMessage struct {
	Owner        string        `json:"owner"`
	ID           string        `json:"id"`
	Kind         core.DebtKind `json:"kind"`
	DueDate      string        `json:"due_date"`
	AmountSen    int64         `json:"amount_sen"`
	Counterparty string        `json:"counterparty"`
	Timestamp    time.Time     `json:"timestamp"`
}

func NewDebtOverdueMessage(d core.DebtCredit) *DebtOverdueMessage {
	return &DebtOverdueMessage{
		Owner:        d.OwnerID,
		ID:           d.ID,
		Kind:         d.Kind,
		DueDate:      d.DueDate.DayKey(),
		AmountSen:    d.Amount.Sen,
		Counterparty: d.Counterparty,
		Timestamp:    time.Now(),
	}
}

func (m *DebtOverdueMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DebtOverdueMessageFromJSON(data []byte) (*DebtOverdueMessage, error) {
	var msg DebtOverdueMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Owner == "" || msg.ID == "" {
		return nil, fmt.Errorf("debt overdue message without owner or id")
	}
	return &msg, nil
}
