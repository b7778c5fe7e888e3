package gtfs

// ServiceCalendar tracks, per service id, the set of dates the service runs
// on. There is no weekly base calendar: a service runs on a date iff an ADDED
// exception for that date is still in effect. Removal deletes eagerly, so a
// date that is both added and later removed is simply absent, and a service
// whose last date is removed disappears from the calendar entirely.
type ServiceCalendar struct {
	added map[string]map[string]struct{}
}

// NewServiceCalendar builds a calendar by applying the exception list in
// order. Exception types other than ADDED and REMOVED are ignored.
func NewServiceCalendar(exceptions []ServiceException) *ServiceCalendar {
	c := &ServiceCalendar{added: map[string]map[string]struct{}{}}
	for _, ex := range exceptions {
		switch ex.Type {
		case ExceptionAdded:
			c.AddException(ex.ServiceID, ex.Date)
		case ExceptionRemoved:
			c.RemoveException(ex.ServiceID, ex.Date)
		}
	}
	return c
}

// AddException records that serviceID runs on date (YYYYMMDD).
func (c *ServiceCalendar) AddException(serviceID, date string) {
	if serviceID == "" || date == "" {
		return
	}
	dates, ok := c.added[serviceID]
	if !ok {
		dates = map[string]struct{}{}
		c.added[serviceID] = dates
	}
	dates[date] = struct{}{}
}

// RemoveException cancels serviceID on date. Removing the final tracked date
// drops the service from the calendar.
func (c *ServiceCalendar) RemoveException(serviceID, date string) {
	dates, ok := c.added[serviceID]
	if !ok {
		return
	}
	delete(dates, date)
	if len(dates) == 0 {
		delete(c.added, serviceID)
	}
}

// RunsOn reports whether serviceID runs on date (YYYYMMDD).
func (c *ServiceCalendar) RunsOn(serviceID, date string) bool {
	dates, ok := c.added[serviceID]
	if !ok {
		return false
	}
	_, ok = dates[date]
	return ok
}

// TrackedDates returns how many dates are currently recorded for serviceID.
// Zero means the service never runs.
func (c *ServiceCalendar) TrackedDates(serviceID string) int {
	return len(c.added[serviceID])
}

// Services returns the number of services with at least one tracked date.
func (c *ServiceCalendar) Services() int { return len(c.added) }
