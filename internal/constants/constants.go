package constants

import "time"

const (
	MinScore        = 50
	MaxScore        = 150
	MinCourseRating = 60.0
	MaxCourseRating = 80.0
	MinSlopeRating  = 55
	MaxSlopeRating  = 155

	// Defaults applied when a rating field is missing or unparseable.
	DefaultCourseRating = 72.0
	DefaultSlopeRating  = 113

	// NeutralSlope is the USGA reference slope used in differentials.
	NeutralSlope = 113
)

const (
	// RetentionCap bounds the stored round list; the oldest round by
	// insertion is evicted when it is exceeded.
	RetentionCap = 20

	// HandicapWindow is how many of the most recent rounds feed the index.
	HandicapWindow = 8
)

const (
	SyncDebounce     = 1 * time.Second
	SyncInterval     = 5 * time.Minute
	TransportTimeout = 15 * time.Second
	DatabaseTimeout  = 5 * time.Second
	RequestTimeout   = 30 * time.Second
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
)

const (
	ShutdownTimeout = 5 * time.Second
)
