package domain

import "strings"

// Leaderboard query limits.
const (
	DefaultLeaderboardResults = 25
	MaxLeaderboardResults     = 25
)

// LeaderboardTimeSpan filters scores by period.
type LeaderboardTimeSpan int

// Time spans, numbered as the vendor numbers them.
const (
	TimeSpanDaily   LeaderboardTimeSpan = 0
	TimeSpanWeekly  LeaderboardTimeSpan = 1
	TimeSpanAllTime LeaderboardTimeSpan = 2
)

// String returns the span name.
func (s LeaderboardTimeSpan) String() string {
	switch s {
	case TimeSpanDaily:
		return "daily"
	case TimeSpanWeekly:
		return "weekly"
	default:
		return "all-time"
	}
}

// ParseTimeSpan parses a span name.
func ParseTimeSpan(s string) (LeaderboardTimeSpan, error) {
	switch strings.ToLower(s) {
	case "daily":
		return TimeSpanDaily, nil
	case "weekly":
		return TimeSpanWeekly, nil
	case "all-time", "alltime", "":
		return TimeSpanAllTime, nil
	}
	return 0, ErrInvalidArgument.WithDetails("unknown time span: " + s)
}

// LeaderboardCollection selects the player population.
type LeaderboardCollection int

// Collections. Friends uses the vendor's current value.
const (
	CollectionPublic  LeaderboardCollection = 0
	CollectionFriends LeaderboardCollection = 3
)

// String returns the collection name.
func (c LeaderboardCollection) String() string {
	if c == CollectionFriends {
		return "friends"
	}
	return "public"
}

// ParseCollection parses a collection name.
func ParseCollection(s string) (LeaderboardCollection, error) {
	switch strings.ToLower(s) {
	case "public", "":
		return CollectionPublic, nil
	case "friends":
		return CollectionFriends, nil
	}
	return 0, ErrInvalidArgument.WithDetails("unknown collection: " + s)
}

// LeaderboardEntry is one ranked score.
type LeaderboardEntry struct {
	PlayerID        string `json:"playerId"`
	DisplayName     string `json:"displayName"`
	Score           int64  `json:"score"`
	FormattedScore  string `json:"formattedScore" table:"wide"`
	Rank            int64  `json:"rank"`
	ScoreTag        string `json:"scoreTag"`
	TimestampMillis int64  `json:"timestampMillis" table:"wide"`
	AvatarURL       string `json:"avatarUrl" table:"wide"`
}

// LeaderboardQuery describes a score page request.
type LeaderboardQuery struct {
	LeaderboardID string
	TimeSpan      LeaderboardTimeSpan
	Collection    LeaderboardCollection
	MaxResults    int
}

// Normalize validates the query and clamps MaxResults.
func (q *LeaderboardQuery) Normalize() error {
	if q.LeaderboardID == "" {
		return ErrMissingArgument.WithDetails("leaderboard id is required")
	}
	if q.MaxResults <= 0 || q.MaxResults > MaxLeaderboardResults {
		q.MaxResults = DefaultLeaderboardResults
	}
	return nil
}
