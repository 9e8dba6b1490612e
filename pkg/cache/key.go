package cache

import (
	"fmt"
)

// Key identifies one cached price overview.
type Key struct {
	AppID    int
	Currency int
	HashName string
}

// String generates a deterministic Redis key.
// Format: market:price:appid=730:currency=1:hash=AK-47 | Redline (Field-Tested)
func (k Key) String() string {
	return fmt.Sprintf("market:price:appid=%d:currency=%d:hash=%s", k.AppID, k.Currency, k.HashName)
}
