package events

import "context"

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(ctx context.Context, orderID, userID string, totalAmount float64, itemCount int) error {
	return nil
}

func (NopPublisher) PublishOrderUpdated(ctx context.Context, orderID string, status, paymentStatus *string) error {
	return nil
}

func (NopPublisher) PublishBookCreated(ctx context.Context, id, title, author string, price float64, inStock bool) error {
	return nil
}

func (NopPublisher) PublishBookUpdated(ctx context.Context, title string, updates map[string]interface{}) error {
	return nil
}

func (NopPublisher) PublishBookDeleted(ctx context.Context, title string) error {
	return nil
}

func (NopPublisher) IsHealthy() bool { return true }

func (NopPublisher) Close() error { return nil }
