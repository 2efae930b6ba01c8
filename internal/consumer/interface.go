package consumer

import "context"

// Entity names carried by catalog change events.
const (
	EntityGame     = "game"
	EntityUser     = "user"
	EntityEntry    = "entry"
	EntityGenre    = "genre"
	EntityPlatform = "platform"
)

// CatalogChangeEvent is published by the catalog owners whenever a row
// that feeds search is created, updated or deleted.
type CatalogChangeEvent struct {
	Entity    string `json:"entity"`
	ID        string `json:"id"`
	Op        string `json:"op"`
	Timestamp int64  `json:"timestamp"`
}

// CatalogChangeHandler handles incoming catalog change events.
type CatalogChangeHandler interface {
	HandleCatalogChange(ctx context.Context, event *CatalogChangeEvent) error
}

// CatalogChangeConsumer defines the interface for consuming catalog change events.
type CatalogChangeConsumer interface {
	Start(ctx context.Context) error
	Close() error
}
