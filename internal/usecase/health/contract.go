package health

import "context"

// DBPinger checks investigator store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks metadata cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
