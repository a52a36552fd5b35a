package ports

import "context"

const (
	TxBroadcast Topic = "Asset Tx Broadcast"
	TxVerified  Topic = "Asset Tx Verified"
)

type Topic string

type TxAlert struct {
	Txid string
	Kind string
	Fee  int64
	// Assets maps the moved asset guids to their amounts.
	Assets map[uint64]int64
}

type Alerts interface {
	Publish(ctx context.Context, topic Topic, message interface{}) error
}
