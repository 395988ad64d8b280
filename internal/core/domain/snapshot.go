package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
)

// Cloud save constraints.
const (
	// CoverImageSoftLimit is the cover image size at which a commit warns.
	CoverImageSoftLimit = 512 * 1024

	// CoverImageHardLimit is the largest cover image the vendor accepts.
	CoverImageHardLimit = 800 * 1024

	// MaxPayloadSize is the largest snapshot payload per slot.
	MaxPayloadSize = 3 * 1024 * 1024

	// MaxFilenameLength is the vendor's limit on snapshot filenames.
	MaxFilenameLength = 100

	// ConflictIDPrefix is the prefix for conflict IDs.
	ConflictIDPrefix = "gscf-"
)

// SnapshotHandle references an open save slot.
//
// A handle is created by Open, consumed by Read and Commit, and invalid once
// committed or deleted.
type SnapshotHandle struct {
	Filename string `json:"filename"`

	// NativeHandle is the vendor's opaque transaction token.
	NativeHandle string `json:"nativeHandle"`

	HasConflict bool `json:"hasConflict"`

	// LastModifiedTimestamp is the last modification time (Unix milliseconds).
	LastModifiedTimestamp int64 `json:"lastModifiedTimestamp"`

	PlayedTimeMillis int64  `json:"playedTimeMillis"`
	Description      string `json:"description"`
	CoverImageURI    string `json:"coverImageUri,omitempty"`
}

// String returns a short form for logging.
func (h *SnapshotHandle) String() string {
	if h == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s@%d", h.Filename, h.LastModifiedTimestamp)
}

// ValidateSnapshotFilename checks a slot name against vendor rules.
func ValidateSnapshotFilename(name string) error {
	if name == "" {
		return ErrMissingArgument.WithDetails("filename is required")
	}
	if len(name) > MaxFilenameLength {
		return ErrInvalidArgument.WithDetails(fmt.Sprintf("filename exceeds %d characters", MaxFilenameLength))
	}
	for _, r := range name {
		if !isFilenameRune(r) {
			return ErrInvalidArgument.WithDetails(fmt.Sprintf("filename contains invalid character %q", r))
		}
	}
	return nil
}

func isFilenameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		strings.ContainsRune("-._~", r)
}

// ValidatePayload rejects snapshot payloads over MaxPayloadSize.
func ValidatePayload(data []byte) error {
	if len(data) > MaxPayloadSize {
		return ErrDataTooLarge.WithDetails(fmt.Sprintf("payload is %d bytes, limit %d", len(data), MaxPayloadSize))
	}
	return nil
}

// SaveGameMetadata is the metadata recorded with a commit.
type SaveGameMetadata struct {
	Description      string
	PlayedTimeMillis int64
	CoverImage       []byte
	ProgressValue    int64
}

// Validate checks the metadata. Oversize cover images fail; everything else
// is reported as warnings. Missing fields only warn when requireMetadata is set.
func (m SaveGameMetadata) Validate(requireMetadata bool) (warnings []string, err error) {
	size := len(m.CoverImage)
	if size > CoverImageHardLimit {
		return nil, ErrDataTooLarge.WithDetails(
			fmt.Sprintf("cover image is %dKB, limit %dKB", size/1024, CoverImageHardLimit/1024))
	}
	if size >= CoverImageSoftLimit {
		warnings = append(warnings,
			fmt.Sprintf("cover image is %dKB, recommended max %dKB", size/1024, CoverImageSoftLimit/1024))
	}

	if requireMetadata {
		if m.Description == "" {
			warnings = append(warnings, "save description is empty")
		}
		if m.PlayedTimeMillis <= 0 {
			warnings = append(warnings, "played time is not set")
		}
		if size == 0 {
			warnings = append(warnings, "cover image is missing")
		}
	}
	return warnings, nil
}

// ConflictResolution selects which side of a conflict survives.
type ConflictResolution int

// Conflict resolutions.
const (
	ResolutionUseLocal ConflictResolution = iota
	ResolutionUseServer
	// ResolutionUseManual is accepted but not implemented; it behaves as UseLocal.
	ResolutionUseManual
)

// String returns the vendor name of the resolution.
func (r ConflictResolution) String() string {
	switch r {
	case ResolutionUseLocal:
		return "UseLocal"
	case ResolutionUseServer:
		return "UseServer"
	case ResolutionUseManual:
		return "UseManual"
	default:
		return fmt.Sprintf("ConflictResolution(%d)", int(r))
	}
}

// Effective returns the resolution actually sent to the vendor.
func (r ConflictResolution) Effective() ConflictResolution {
	if r == ResolutionUseServer {
		return ResolutionUseServer
	}
	return ResolutionUseLocal
}

// ParseConflictResolution parses a vendor resolution name.
func ParseConflictResolution(s string) (ConflictResolution, error) {
	switch strings.ToLower(s) {
	case "uselocal", "local":
		return ResolutionUseLocal, nil
	case "useserver", "server":
		return ResolutionUseServer, nil
	case "usemanual", "manual":
		return ResolutionUseManual, nil
	}
	return 0, ErrInvalidArgument.WithDetails("unknown conflict resolution: " + s)
}

// SavedGameConflict pairs the local and server versions of a slot.
//
// It exists only between conflict detection and resolution. Resolve may be
// called from any goroutine; only the first call decides.
type SavedGameConflict struct {
	ID         string
	Filename   string
	Local      SnapshotHandle
	Server     SnapshotHandle
	LocalData  []byte
	ServerData []byte

	decided  atomic.Bool
	decision chan ConflictResolution
}

// NewSavedGameConflict creates an undecided conflict.
func NewSavedGameConflict(local, server SnapshotHandle, localData, serverData []byte) *SavedGameConflict {
	filename := local.Filename
	if filename == "" {
		filename = server.Filename
	}
	return &SavedGameConflict{
		ID:         GenerateConflictID(),
		Filename:   filename,
		Local:      local,
		Server:     server,
		LocalData:  localData,
		ServerData: serverData,
		decision:   make(chan ConflictResolution, 1),
	}
}

// Resolve records the decision. It returns false if the conflict was already decided.
func (c *SavedGameConflict) Resolve(r ConflictResolution) bool {
	if !c.decided.CompareAndSwap(false, true) {
		return false
	}
	c.decision <- r
	return true
}

// Decided reports whether Resolve has succeeded.
func (c *SavedGameConflict) Decided() bool {
	return c.decided.Load()
}

// Decision delivers the first resolution exactly once.
func (c *SavedGameConflict) Decision() <-chan ConflictResolution {
	return c.decision
}

// ResolveByTimestamp picks the side with the newer modification time.
// Equal timestamps pick the server.
func (c *SavedGameConflict) ResolveByTimestamp() ConflictResolution {
	if c == nil {
		return ResolutionUseServer
	}
	if c.Local.LastModifiedTimestamp > c.Server.LastModifiedTimestamp {
		return ResolutionUseLocal
	}
	return ResolutionUseServer
}

// GenerateConflictID generates a new conflict ID.
// Format: gscf-{ulid_lowercase}.
func GenerateConflictID() string {
	id := ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.Reader, 0))
	return ConflictIDPrefix + strings.ToLower(id.String())
}
