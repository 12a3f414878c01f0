package unlock

import (
	"io"

	"github.com/sirupsen/logrus"
)

// MachineProfileID names the machine-wide profile in a GrantStore.
const MachineProfileID = "machine"

// MetricSource supplies theme metrics. The registry reads group "Unlocks":
// "UnlockNames" and one "Unlock<Name>" per listed rule.
type MetricSource interface {
	Metric(group, name string) (string, error)
}

// Catalog looks up songs and courses by key. Generation must change whenever
// the catalog contents change so stale resolutions can be detected.
type Catalog interface {
	FindSong(key string) (SongRef, bool)
	FindCourse(key string) (CourseRef, bool)
	Generation() uint64
}

// ProgressSource returns the machine profile's play history.
type ProgressSource interface {
	MachineProgress() Progress
}

// GrantStore holds permanently unlocked entry ids per profile. The registry
// only ever inserts.
type GrantStore interface {
	PersistentProfileIDs() []string
	HasGrant(profileID string, entryID int) bool
	InsertGrant(profileID string, entryID int) error
}

// Selection receives preferred song/course picks from PreferEntryID.
type Selection interface {
	SetPreferredSong(song SongRef)
	SetPreferredCourse(course CourseRef)
}

// Deps wires a Registry to its collaborators. Selection, Enabled, Log and
// Calculator are optional.
type Deps struct {
	Metrics    MetricSource
	Catalog    Catalog
	Progress   ProgressSource
	Grants     GrantStore
	Selection  Selection
	Enabled    func() bool
	Log        logrus.FieldLogger
	Calculator *Calculator
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
