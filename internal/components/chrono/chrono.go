package chrono

import "time"

// CN is UTC+8, the timezone the upstream wikis publish their data in.
var CN = time.FixedZone("UTC+8", 8*60*60)

// API is the interface that anything depending on the system clock should use.
type API interface {
	Now() time.Time
	Location() *time.Location
}

type StandardImpl struct {
	location *time.Location
}

func NewStandardImpl() StandardImpl {
	return StandardImpl{location: CN}
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// FixedImpl always returns the same instant, each call to Now advances it
// by Step when Step is non-zero.
type FixedImpl struct {
	Current time.Time
	Step    time.Duration
}

func (f *FixedImpl) Now() time.Time {
	now := f.Current
	f.Current = f.Current.Add(f.Step)
	return now
}

func (f *FixedImpl) Location() *time.Location {
	return f.Current.Location()
}
