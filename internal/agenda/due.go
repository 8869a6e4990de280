package agenda

import (
	"errors"
	"strings"
	"time"

	"github.com/sadopc/orgauns/internal/store"
)

// DueLayout is how due instants are typed and shown, in local time.
const DueLayout = "2006-01-02 15:04"

// DefaultDueHour is the wall-clock hour given to a date typed without a time.
const DefaultDueHour = 9

var ErrInvalidDue = errors.New("use YYYY-MM-DD or YYYY-MM-DD HH:MM")

// ParseDue reads "YYYY-MM-DD HH:MM" or "YYYY-MM-DD" in time.Local. A bare
// date means DefaultDueHour on that day. Empty input means no due date.
func ParseDue(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(DueLayout, s, time.Local); err == nil {
		return store.DueMillis(t), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return nil, ErrInvalidDue
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), DefaultDueHour, 0, 0, 0, time.Local)
	return store.DueMillis(t), nil
}
