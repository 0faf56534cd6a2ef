package events

// Topics emitted by the settlement service.
const (
	// TopicSettlementConfirmed fires after a PURCHASE or PICKUP is persisted.
	TopicSettlementConfirmed = "settlement.confirmed"
	// TopicDepositRecorded fires after a DEPOSIT is persisted.
	TopicDepositRecorded = "deposit.recorded"
	// TopicReturnRecorded fires after a RETURN is persisted.
	TopicReturnRecorded = "return.recorded"
)
