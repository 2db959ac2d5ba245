package domain

import "time"

// Suite is a named authentication context shared by client applications.
type Suite struct {
	ID        string
	Name      string
	CreatorID string
	CreatedAt time.Time
}
