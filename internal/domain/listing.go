package domain

import (
	"sort"
	"time"
)

type Listing struct {
	ID         string
	Title      string
	UserID     string
	PublicName string
	PostedAt   time.Time
	URL        string
}

// NewListings returns the listings posted strictly after watermark, without
// duplicate ids, newest first.
func NewListings(fetched []Listing, watermark time.Time) []Listing {
	seen := make(map[string]struct{}, len(fetched))
	fresh := make([]Listing, 0, len(fetched))
	for _, listing := range fetched {
		if !listing.PostedAt.After(watermark) {
			continue
		}
		if _, ok := seen[listing.ID]; ok {
			continue
		}
		seen[listing.ID] = struct{}{}
		fresh = append(fresh, listing)
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].PostedAt.After(fresh[j].PostedAt)
	})

	return fresh
}

// LatestPostedAt returns the newest posting time among listings.
func LatestPostedAt(listings []Listing) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, listing := range listings {
		if listing.PostedAt.IsZero() {
			continue
		}
		if !found || listing.PostedAt.After(latest) {
			latest = listing.PostedAt
			found = true
		}
	}

	return latest, found
}

// AdvanceWatermark moves the watermark forward to the newest fetched listing.
// It never moves backwards.
func AdvanceWatermark(current *time.Time, fetched []Listing) (time.Time, bool) {
	latest, ok := LatestPostedAt(fetched)
	if !ok {
		return time.Time{}, false
	}
	if current != nil && !latest.After(*current) {
		return *current, false
	}

	return latest, true
}
