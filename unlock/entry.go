package unlock

import (
	"fmt"
	"strings"
)

// NoEntryID marks an entry that was declared without a code.
const NoEntryID = -1

type RewardType int

const (
	RewardSong RewardType = iota
	RewardSteps
	RewardCourse
	RewardModifier
	NumRewardTypes

	RewardInvalid RewardType = -1
)

var rewardTypeNames = [NumRewardTypes]string{"Song", "Steps", "Course", "Modifier"}

func (t RewardType) String() string {
	if t < 0 || t >= NumRewardTypes {
		return "Invalid"
	}
	return rewardTypeNames[t]
}

func ParseRewardType(s string) (RewardType, bool) {
	for i, name := range rewardTypeNames {
		if strings.EqualFold(name, s) {
			return RewardType(i), true
		}
	}
	return RewardInvalid, false
}

type Difficulty int

const (
	DifficultyBeginner Difficulty = iota
	DifficultyEasy
	DifficultyMedium
	DifficultyHard
	DifficultyChallenge
	DifficultyEdit
	NumDifficulties

	DifficultyInvalid Difficulty = -1
)

var difficultyNames = [NumDifficulties]string{"Beginner", "Easy", "Medium", "Hard", "Challenge", "Edit"}

func (d Difficulty) String() string {
	if d < 0 || d >= NumDifficulties {
		return "Invalid"
	}
	return difficultyNames[d]
}

// ParseDifficulty returns DifficultyInvalid for unknown names.
func ParseDifficulty(s string) Difficulty {
	s = strings.TrimSpace(s)
	for i, name := range difficultyNames {
		if strings.EqualFold(name, s) {
			return Difficulty(i)
		}
	}
	return DifficultyInvalid
}

// SongRef is a handle to a catalog song. ID is the catalog's stable identity
// and survives renames; Key is what rules name the song by. Handles with an
// ID are compared by ID, others by Key. Registry.Stale reports when resolved
// handles may no longer match the catalog.
type SongRef struct {
	ID             string
	Key            string
	Title          string
	BannerPath     string
	BackgroundPath string
}

func (s SongRef) same(o SongRef) bool {
	if s.ID != "" || o.ID != "" {
		return s.ID == o.ID
	}
	return s.Key == o.Key
}

type CourseRef struct {
	ID         string
	Key        string
	Title      string
	BannerPath string
}

func (c CourseRef) same(o CourseRef) bool {
	if c.ID != "" || o.ID != "" {
		return c.ID == o.ID
	}
	return c.Key == o.Key
}

// Entry is one unlock rule after parsing. Resolved targets are filled by
// Registry.Resolve and are only meaningful for the entry's reward type.
type Entry struct {
	Name         string // rule identifier from UnlockNames
	ID           int
	Type         RewardType
	Args         []string // reward sub-command arguments, as written
	Requirements [NumRequirements]float64
	RouletteOnly bool

	song       SongRef
	hasSong    bool
	course     CourseRef
	hasCourse  bool
	difficulty Difficulty
	modKey     string // case-folded Modifier()
}

func newEntry(name string) Entry {
	return Entry{
		Name:       name,
		ID:         NoEntryID,
		Type:       RewardInvalid,
		difficulty: DifficultyInvalid,
	}
}

func (e *Entry) arg(i int) string {
	if i < len(e.Args) {
		return e.Args[i]
	}
	return ""
}

// TargetRef is the unresolved reference: song or course key, or modifier text.
func (e *Entry) TargetRef() string {
	if e.Type == RewardModifier {
		return e.Modifier()
	}
	return e.arg(0)
}

// Modifier returns the modifier text a Modifier entry unlocks.
func (e *Entry) Modifier() string {
	return strings.Join(e.Args, ",")
}

func (e *Entry) Song() (SongRef, bool)     { return e.song, e.hasSong }
func (e *Entry) Course() (CourseRef, bool) { return e.course, e.hasCourse }
func (e *Entry) Difficulty() Difficulty    { return e.difficulty }

func (e *Entry) Requirement(kind RequirementKind) float64 {
	if kind < 0 || kind >= NumRequirements {
		return 0
	}
	return e.Requirements[kind]
}

// IsValid reports whether every catalog target the reward needs is resolved.
func (e *Entry) IsValid() bool {
	switch e.Type {
	case RewardSong:
		return e.hasSong
	case RewardSteps:
		return e.hasSong && e.difficulty != DifficultyInvalid
	case RewardCourse:
		return e.hasCourse
	case RewardModifier:
		return true
	default:
		panic(fmt.Sprintf("unlock: entry %q has reward type %d", e.Name, e.Type))
	}
}

func (e *Entry) Description() string {
	switch e.Type {
	case RewardSong:
		return e.song.Title
	case RewardSteps:
		return e.difficulty.String()
	case RewardCourse:
		return e.course.Title
	case RewardModifier:
		return e.Modifier()
	default:
		panic(fmt.Sprintf("unlock: entry %q has reward type %d", e.Name, e.Type))
	}
}

func (e *Entry) BannerFile() string {
	switch e.Type {
	case RewardSong:
		return e.song.BannerPath
	case RewardCourse:
		return e.course.BannerPath
	case RewardSteps, RewardModifier:
		return ""
	default:
		panic(fmt.Sprintf("unlock: entry %q has reward type %d", e.Name, e.Type))
	}
}

func (e *Entry) BackgroundFile() string {
	switch e.Type {
	case RewardSong, RewardSteps:
		return e.song.BackgroundPath
	case RewardCourse, RewardModifier:
		return ""
	default:
		panic(fmt.Sprintf("unlock: entry %q has reward type %d", e.Name, e.Type))
	}
}

func (e *Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Unlock: %s %s; ", e.Type, strings.Join(e.Args, ","))
	for k := RequirementKind(0); k < NumRequirements; k++ {
		if e.Requirements[k] != 0 {
			fmt.Fprintf(&b, "%s = %f; ", k, e.Requirements[k])
		}
	}
	fmt.Fprintf(&b, "entryID = %d", e.ID)
	return b.String()
}
