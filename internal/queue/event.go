// Package queue publishes and consumes domain events over RabbitMQ.
package queue

// ReservationQueue is the durable queue reservation events are routed to.
const ReservationQueue = "reservation.confirmed"

// ReservationConfirmedEvent is published when a user books a new court slot.
// It carries enough information for downstream consumers to log or notify
// without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID string `json:"reservation_id"`
	UserUID       string `json:"user_uid"`
	Datetime      string `json:"datetime"`
	CourtType     string `json:"court_type"`
	Location      string `json:"location"`
	ConfirmedAt   string `json:"confirmed_at"`
}
