// SightingFilter narrows archived sightings returned by the API.
package dto

import "time"

type SightingFilter struct {
	Label     string
	SessionID string
	After     time.Time
	Limit     int
}
