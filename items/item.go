package items

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/xid"
)

type ID string

// Kind says whether the posting reports a lost item or a found one.
type Kind string

const (
	Lost  Kind = "Lost"
	Found Kind = "Found"
)

var (
	ErrInvalidItem  = errors.New("invalid item")
	ErrItemNotFound = errors.New("item not found")
)

// Item is a lost-and-found posting. UserID is the owning account,
// stamped from the poster's session claims.
type Item struct {
	ID          ID `bson:"_id"`
	Title       string
	Description string
	ImageURLs   []string
	Category    string
	Location    string
	Date        time.Time
	Time        string
	Kind        Kind
	UserID      string
	CreatedAt   time.Time
}

// NewItem validates the posting's required fields and returns a new
// item owned by userID.
func NewItem(userID, title, description, category, location, timeOfDay string, date time.Time, kind Kind, imageURLs []string) (*Item, error) {
	switch {
	case userID == "",
		strings.TrimSpace(title) == "",
		strings.TrimSpace(description) == "",
		strings.TrimSpace(category) == "",
		strings.TrimSpace(location) == "",
		strings.TrimSpace(timeOfDay) == "",
		date.IsZero():
		return nil, ErrInvalidItem
	}

	if kind != Lost && kind != Found {
		return nil, ErrInvalidItem
	}

	if imageURLs == nil {
		imageURLs = []string{}
	}

	return &Item{
		ID:          ID(xid.New().String()),
		Title:       title,
		Description: description,
		ImageURLs:   imageURLs,
		Category:    category,
		Location:    location,
		Date:        date,
		Time:        timeOfDay,
		Kind:        kind,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
