package suppliers

import "time"

type Supplier struct {
	ID        int64
	Name      string
	Phone     string
	Address   string
	Active    bool
	CreatedAt time.Time
}
