package bridge

import (
	"encoding/json"

	"github.com/yndnr/gamesvc-go/internal/core/domain"
)

func decode[T any](kind, doc string) (T, error) {
	var v T
	if doc == "" {
		return v, domain.ErrMalformedPayload.WithDetails("empty " + kind + " document")
	}
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return v, domain.ErrMalformedPayload.WithDetails(kind).WithCause(err)
	}
	return v, nil
}

func encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Only plain data types are encoded here.
		panic(err)
	}
	return string(b)
}

// DecodeSnapshot decodes a snapshotJSON document.
func DecodeSnapshot(doc string) (*domain.SnapshotHandle, error) {
	h, err := decode[domain.SnapshotHandle]("snapshot", doc)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// EncodeSnapshot encodes a snapshot handle as snapshotJSON.
func EncodeSnapshot(h *domain.SnapshotHandle) string {
	return encode(h)
}

// DecodeAchievements decodes an achievementsJSON array. A null array
// decodes to an empty list.
func DecodeAchievements(doc string) ([]domain.Achievement, error) {
	list, err := decode[[]domain.Achievement]("achievements", doc)
	if list == nil && err == nil {
		list = []domain.Achievement{}
	}
	return list, err
}

// EncodeAchievements encodes achievements as achievementsJSON.
func EncodeAchievements(list []domain.Achievement) string {
	if list == nil {
		list = []domain.Achievement{}
	}
	return encode(list)
}

// DecodeScores decodes a scoresJSON array.
func DecodeScores(doc string) ([]domain.LeaderboardEntry, error) {
	list, err := decode[[]domain.LeaderboardEntry]("scores", doc)
	if list == nil && err == nil {
		list = []domain.LeaderboardEntry{}
	}
	return list, err
}

// EncodeScores encodes entries as scoresJSON.
func EncodeScores(list []domain.LeaderboardEntry) string {
	if list == nil {
		list = []domain.LeaderboardEntry{}
	}
	return encode(list)
}

// DecodeStats decodes a statsJSON document.
func DecodeStats(doc string) (*domain.PlayerStats, error) {
	s, err := decode[domain.PlayerStats]("stats", doc)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// EncodeStats encodes stats as statsJSON.
func EncodeStats(s *domain.PlayerStats) string {
	return encode(s)
}

// DecodeEvents decodes an eventsJSON array.
func DecodeEvents(doc string) ([]domain.Event, error) {
	list, err := decode[[]domain.Event]("events", doc)
	if list == nil && err == nil {
		list = []domain.Event{}
	}
	return list, err
}

// EncodeEvents encodes events as eventsJSON.
func EncodeEvents(list []domain.Event) string {
	if list == nil {
		list = []domain.Event{}
	}
	return encode(list)
}

// DecodeEvent decodes an eventJSON document.
func DecodeEvent(doc string) (*domain.Event, error) {
	e, err := decode[domain.Event]("event", doc)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EncodeEvent encodes one event as eventJSON.
func EncodeEvent(e *domain.Event) string {
	return encode(e)
}

// EncodeIDs encodes ids as a JSON string array.
func EncodeIDs(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	return encode(ids)
}

// DecodeIDs decodes a JSON string array.
func DecodeIDs(doc string) ([]string, error) {
	return decode[[]string]("ids", doc)
}

// EncodeScopes encodes scopes as the vendor's scope array.
func EncodeScopes(scopes []domain.AuthScope) string {
	if scopes == nil {
		scopes = []domain.AuthScope{}
	}
	return encode(scopes)
}

// DecodeScopes decodes a granted scope array. Unknown scope names are
// dropped and an empty document means no scopes.
func DecodeScopes(doc string) ([]domain.AuthScope, error) {
	if doc == "" {
		return nil, nil
	}
	names, err := decode[[]string]("scopes", doc)
	if err != nil {
		return nil, err
	}
	scopes := make([]domain.AuthScope, 0, len(names))
	for _, n := range names {
		if s, err := domain.ParseAuthScope(n); err == nil {
			scopes = append(scopes, s)
		}
	}
	return scopes, nil
}

// DecodeClaims decodes an ID token claims document. An empty document
// means no claims were granted.
func DecodeClaims(doc string) (*domain.IDTokenClaims, error) {
	if doc == "" {
		return nil, nil
	}
	c, err := decode[domain.IDTokenClaims]("claims", doc)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// EncodeClaims encodes claims. Nil encodes as an empty document.
func EncodeClaims(c *domain.IDTokenClaims) string {
	if c == nil {
		return ""
	}
	return encode(c)
}
