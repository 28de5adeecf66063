package domain

// Business validation constants
const (
	MinDurationMinutes = 5
	MaxDurationMinutes = 480 // 8 hours

	MinBufferMinutes = 0
	MaxBufferMinutes = 120

	MinNoticeMinutesLow  = 0
	MinNoticeMinutesHigh = 10080 // 1 week

	MinCapacity = 1
	MaxCapacity = 100

	MinRecurrenceCount = 1
	MaxRecurrenceLimit = 52 // 1 year of weekly occurrences

	MinAdvanceBookingDays = 0
	MaxAdvanceBookingDays = 365

	MinutesPerDay = 24 * 60
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DefaultTimezone используется, когда у хоста не настроена таймзона
const DefaultTimezone = "UTC"
