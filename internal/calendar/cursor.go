package calendar

import "time"

// Cursor is the navigation state of a calendar screen.
//
// Moving between months leaves Selected untouched, so the selected day may
// lie outside Visible; the day list keeps showing the last explicit choice.
type Cursor struct {
	Selected Date
	Visible  YearMonth
	WeekView bool

	now func() time.Time
}

// NewCursor starts on today's date as reported by now (time.Now when nil).
func NewCursor(now func() time.Time) Cursor {
	if now == nil {
		now = time.Now
	}
	today := DateOf(now())
	return Cursor{Selected: today, Visible: today.YearMonth(), now: now}
}

// Event is a navigation action applied with Cursor.Apply.
type Event interface{ isEvent() }

type (
	SelectDate    struct{ Date Date }
	SelectToday   struct{}
	NextMonth     struct{}
	PreviousMonth struct{}
	ToggleView    struct{}
)

func (SelectDate) isEvent()    {}
func (SelectToday) isEvent()   {}
func (NextMonth) isEvent()     {}
func (PreviousMonth) isEvent() {}
func (ToggleView) isEvent()    {}

// Apply returns the cursor after ev. The receiver is not modified.
func (c Cursor) Apply(ev Event) Cursor {
	switch ev := ev.(type) {
	case SelectDate:
		c.Selected = ev.Date
	case SelectToday:
		now := c.now
		if now == nil {
			now = time.Now
		}
		today := DateOf(now())
		c.Selected = today
		c.Visible = today.YearMonth()
	case NextMonth:
		c.Visible = c.Visible.AddMonths(1)
	case PreviousMonth:
		c.Visible = c.Visible.AddMonths(-1)
	case ToggleView:
		c.WeekView = !c.WeekView
	}
	return c
}

// Shorthands for Apply with a single event.
func (c Cursor) SelectDate(d Date) Cursor { return c.Apply(SelectDate{Date: d}) }
func (c Cursor) SelectToday() Cursor      { return c.Apply(SelectToday{}) }
func (c Cursor) NextMonth() Cursor        { return c.Apply(NextMonth{}) }
func (c Cursor) PreviousMonth() Cursor    { return c.Apply(PreviousMonth{}) }
func (c Cursor) ToggleView() Cursor       { return c.Apply(ToggleView{}) }

// Grid returns the cells for the current view mode: the week around the
// selected date, or the visible month.
func (c Cursor) Grid() []Day {
	if c.WeekView {
		return WeekGrid(c.Selected)
	}
	return MonthGrid(c.Visible)
}
