// Package messaging publishes security events to a message broker.
//
// Business code depends on Publisher only, so the broker (Kafka, NATS, NSQ,
// Google Pub/Sub) is chosen by configuration. Delivery is best effort: the
// vault never consumes these events itself.
package messaging
