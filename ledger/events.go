package ledger

import (
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const OperationCommittedEvent = "OperationCommittedEvent"

// Event describes a committed mutation. Published after the database
// transaction commits; the durable record is the LedgerEntry row, the bus is
// for in-process observers (audit logging).
type Event struct {
	Operation    string
	TeamID       uint
	OtherTeamID  *uint
	PropertyName string
	Amount       decimal.Decimal
	At           time.Time
}

var bus EventBus.Bus

func InitEvents() {
	bus = EventBus.New()
}

func Subscribe(callbackFn interface{}) error {
	if err := bus.SubscribeAsync(OperationCommittedEvent, callbackFn, false); err != nil {
		return err
	}

	log.Infof("Subscribed to topic %s", OperationCommittedEvent)
	return nil
}

func publish(event Event) {
	if bus == nil {
		return
	}
	bus.Publish(OperationCommittedEvent, event)
}
